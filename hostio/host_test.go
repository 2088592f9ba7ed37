// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"

	"github.com/offchainlabs/stylus-storage/util/redisutil"
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

func requireWord(t *testing.T, host Host, slot, expected common.Hash) {
	t.Helper()
	value, err := host.LoadWord(slot)
	Require(t, err)
	if value != expected {
		Fail(t, "slot", slot, "holds", value, "expected", expected)
	}
}

// testHostRoundTrip checks the behavior every host shares.
func testHostRoundTrip(t *testing.T, host Host) {
	t.Helper()
	source := testhelpers.NewPseudoRandomDataSource(t, 7)
	slots := make([]common.Hash, 8)
	values := make([]common.Hash, 8)
	for i := range slots {
		slots[i] = source.GetHash()
		values[i] = source.GetHash()
		requireWord(t, host, slots[i], common.Hash{})
	}
	for i := range slots {
		Require(t, host.StoreWord(slots[i], values[i]))
	}
	for i := range slots {
		requireWord(t, host, slots[i], values[i])
	}

	// overwrite, then clear
	Require(t, host.StoreWord(slots[0], values[1]))
	requireWord(t, host, slots[0], values[1])
	Require(t, host.StoreWord(slots[0], common.Hash{}))
	requireWord(t, host, slots[0], common.Hash{})
	requireWord(t, host, slots[1], values[1])
}

func TestMemoryHost(t *testing.T) {
	host := NewMemoryHost()
	testHostRoundTrip(t, host)
	if host.Len() != 7 {
		Fail(t, "zero words should not be kept, have", host.Len())
	}
}

func TestStateDBHost(t *testing.T) {
	statedb := NewMemoryBackedStateDB()
	account := testhelpers.RandomAddress()
	host := NewStateDBHost(statedb, account)
	testHostRoundTrip(t, host)

	slot := testhelpers.RandomHash()
	value := testhelpers.RandomHash()
	Require(t, host.StoreWord(slot, value))
	if statedb.GetState(account, slot) != value {
		Fail(t, "word didn't reach the account's storage")
	}
	if statedb.GetState(testhelpers.RandomAddress(), slot) != (common.Hash{}) {
		Fail(t, "word leaked into another account")
	}
	if host.Account() != account {
		Fail(t, "wrong account")
	}
}

func TestLevelDBHost(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLevelDBStore(dir)
	Require(t, err)
	host := NewKVHost(store, []byte("s"))
	testHostRoundTrip(t, host)

	slot := testhelpers.RandomHash()
	value := testhelpers.RandomHash()
	Require(t, host.StoreWord(slot, value))
	Require(t, host.Close())

	// words survive a restart
	store, err = NewLevelDBStore(dir)
	Require(t, err)
	host = NewKVHost(store, []byte("s"))
	defer host.Close()
	requireWord(t, host, slot, value)
}

func TestPebbleHost(t *testing.T) {
	store, err := NewPebbleStore(filepath.Join(t.TempDir(), "pebble"))
	Require(t, err)
	host := NewKVHost(store, []byte("s"))
	defer host.Close()
	testHostRoundTrip(t, host)
}

func TestBadgerHost(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	Require(t, err)
	host := NewKVHost(store, []byte("s"))
	defer host.Close()
	testHostRoundTrip(t, host)
}

func TestRedisHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client, err := redisutil.RedisClientFromURL(redisutil.CreateTestRedis(ctx, t))
	Require(t, err)
	host := NewKVHost(NewRedisStore(ctx, client, time.Second), []byte("s"))
	defer host.Close()
	testHostRoundTrip(t, host)
}

func TestKVHostPrefixes(t *testing.T) {
	store, err := NewLevelDBStore(t.TempDir())
	Require(t, err)
	defer store.Close()
	first := NewKVHost(store, []byte("a"))
	second := NewKVHost(store, []byte("b"))

	slot := testhelpers.RandomHash()
	value := testhelpers.RandomHash()
	Require(t, first.StoreWord(slot, value))
	requireWord(t, second, slot, common.Hash{})

	raw, err := store.Get(append([]byte("a"), slot.Bytes()...))
	Require(t, err)
	if common.BytesToHash(raw) != value {
		Fail(t, "unexpected key layout")
	}
}

func TestKVHostRejectsCorruptWords(t *testing.T) {
	store, err := NewLevelDBStore(t.TempDir())
	Require(t, err)
	defer store.Close()
	host := NewKVHost(store, nil)
	slot := testhelpers.RandomHash()
	Require(t, store.Put(slot.Bytes(), []byte{1, 2, 3}))
	if _, err := host.LoadWord(slot); err == nil {
		Fail(t, "loaded a three byte word")
	}
	if _, err := store.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		Fail(t, "missing key should be ErrNotFound, got", err)
	}
}

func TestRecordingHost(t *testing.T) {
	host := NewRecordingHost(NewMemoryHost())
	slot := testhelpers.RandomHash()
	value := testhelpers.RandomHash()

	requireWord(t, host, slot, common.Hash{})
	Require(t, host.StoreWord(slot, value))
	requireWord(t, host, slot, value)

	expected := []Access{
		{Load, slot, common.Hash{}},
		{Store, slot, value},
		{Load, slot, value},
	}
	if diff := cmp.Diff(expected, host.Accesses()); diff != "" {
		Fail(t, "unexpected accesses:", diff)
	}
	if host.Loads() != 2 || host.Stores() != 1 {
		Fail(t, "wrong counts", host.Loads(), host.Stores())
	}
	if Load.String() != "load" || Store.String() != "store" {
		Fail(t, "wrong access names")
	}
	host.Reset()
	if len(host.Accesses()) != 0 {
		Fail(t, "reset kept accesses")
	}
	Require(t, host.Close())
}
