// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/offchainlabs/stylus-storage/hostio"
	"github.com/offchainlabs/stylus-storage/util/testhelpers"
)

func TestSharedGuardIsReadOnly(t *testing.T) {
	cache, _, _ := newTestCache(t)
	slot := testhelpers.RandomHash()
	Require(t, Field[StorageU64](cache, slot).SetUint64(42))

	guard, err := Borrow[StorageU64](cache, slot, 24)
	Require(t, err)
	defer guard.Release()
	value, err := guard.Inner().GetUint64()
	Require(t, err)
	if value != 42 {
		Fail(t, "wrong value", value)
	}
	if !errors.Is(guard.Inner().SetUint64(7), ErrWriteProtection) {
		Fail(t, "shared guard allowed a write")
	}

	// any number of readers may coexist
	other, err := Borrow[StorageU64](cache, slot, 24)
	Require(t, err)
	other.Release()
}

func TestMutableGuardsDontAlias(t *testing.T) {
	cache, _, _ := newTestCache(t)
	slot := testhelpers.RandomHash()

	guard, err := BorrowMut[StorageU64](cache, slot, 8)
	Require(t, err)
	Require(t, guard.Inner().SetUint64(1))

	// overlapping regions are refused in both directions
	if _, err := BorrowMut[StorageU32](cache, slot, 12); !errors.Is(err, ErrAliasedBorrow) {
		Fail(t, "overlapping mutable guard was allowed, got", err)
	}
	if _, err := Borrow[StorageU128](cache, slot, 0); !errors.Is(err, ErrAliasedBorrow) {
		Fail(t, "shared guard over a mutable one was allowed, got", err)
	}

	// disjoint neighbors in the same word are fine
	left, err := BorrowMut[StorageU64](cache, slot, 0)
	Require(t, err)
	right, err := Borrow[StorageU64](cache, slot, 16)
	Require(t, err)
	shared, mutable := cache.LiveBorrows()
	if shared != 1 || mutable != 2 {
		Fail(t, "wrong live borrow counts", shared, mutable)
	}

	guard.Release()
	guard.Release()
	left.Release()
	right.Release()
	again, err := BorrowMut[StorageU32](cache, slot, 12)
	Require(t, err)
	again.Release()
	shared, mutable = cache.LiveBorrows()
	if shared != 0 || mutable != 0 {
		Fail(t, "borrows leaked", shared, mutable)
	}
}

func TestMutableGuardOverSharedIsRefused(t *testing.T) {
	cache, _, _ := newTestCache(t)
	slot := testhelpers.RandomHash()
	reader, err := Borrow[StorageAddress](cache, slot, 12)
	Require(t, err)
	if _, err := BorrowMut[StorageU8](cache, slot, 31); !errors.Is(err, ErrAliasedBorrow) {
		Fail(t, "mutable guard over a live reader was allowed, got", err)
	}
	reader.Release()
	writer, err := BorrowMut[StorageU8](cache, slot, 31)
	Require(t, err)
	Require(t, writer.Inner().Set(uint256.NewInt(3)))
	writer.Release()
}

func TestBorrowChecksCanBeDisabled(t *testing.T) {
	config := DefaultConfig
	config.CheckBorrows = false
	cache := NewStorageCache(hostio.NewMemoryHost(), &config)
	slot := testhelpers.RandomHash()

	first, err := BorrowMut[StorageU256](cache, slot, 0)
	Require(t, err)
	second, err := BorrowMut[StorageU256](cache, slot, 0)
	Require(t, err)
	first.Release()
	second.Release()
}

func TestReadOnlyCacheRefusesMutableGuards(t *testing.T) {
	cache, _, _ := newTestCache(t)
	view := cache.ReadOnly()
	if _, err := BorrowMut[StorageU8](view, testhelpers.RandomHash(), 0); !errors.Is(err, ErrWriteProtection) {
		Fail(t, "mutable guard from a read-only view, got", err)
	}
}
