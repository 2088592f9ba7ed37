// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

// Package hostio furnishes the raw single-word storage primitives a program's storage
// cache is built on. A Host is the only thing in this module allowed to talk to the
// underlying persistent store.
package hostio

import (
	"github.com/ethereum/go-ethereum/common"
)

// Host exposes the persistent store one word at a time.
// Slots that were never written read as the zero word.
type Host interface {
	LoadWord(slot common.Hash) (common.Hash, error)
	StoreWord(slot, value common.Hash) error
}

// ClosableHost is a Host holding resources that must be released.
type ClosableHost interface {
	Host
	Close() error
}

type nopCloser struct {
	Host
}

func (nopCloser) Close() error {
	return nil
}

// NopCloser wraps a host that owns nothing.
func NopCloser(host Host) ClosableHost {
	return nopCloser{host}
}
