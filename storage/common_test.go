// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/offchainlabs/stylus-storage/hostio"
	"github.com/offchainlabs/stylus-storage/util/testhelpers"
)

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}

func newTestCache(t *testing.T) (*StorageCache, *hostio.MemoryHost, *hostio.RecordingHost) {
	t.Helper()
	memory := hostio.NewMemoryHost()
	recorder := hostio.NewRecordingHost(memory)
	return NewStorageCache(recorder, nil), memory, recorder
}

func slotOf(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n))
}
