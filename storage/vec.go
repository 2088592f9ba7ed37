// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"fmt"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StorageVec is a dynamic array. Its length is the word at its slot, and its
// elements are packed 32 / size per word starting at keccak256(slot).
type StorageVec[S StorageType[S]] struct {
	cache *StorageCache
	slot  common.Hash
	base  *lazyBase
}

type lazyBase struct {
	once  sync.Once
	value common.Hash
}

func NewVec[S StorageType[S]](cache *StorageCache, slot common.Hash) StorageVec[S] {
	return StorageVec[S]{
		cache: cache,
		slot:  slot,
		base:  &lazyBase{},
	}
}

// Size is a full word: a vector's own slot holds nothing but its length.
func (StorageVec[S]) Size() uint8 {
	return 32
}

func (StorageVec[S]) New(cache *StorageCache, slot common.Hash, offset uint8) StorageVec[S] {
	if offset != 0 {
		panic(fmt.Sprintf("vector at %v opened at offset %d", slot, offset))
	}
	return NewVec[S](cache, slot)
}

func (v StorageVec[S]) Slot() common.Hash {
	return v.slot
}

// Base returns the first element slot, hashing the vector's slot on first use.
func (v StorageVec[S]) Base() common.Hash {
	v.base.once.Do(func() {
		v.base.value = v.cache.baseSlot(v.slot)
	})
	return v.base.value
}

func (v StorageVec[S]) Len() (uint64, error) {
	word, err := v.cache.GetWord(v.slot)
	if err != nil {
		return 0, err
	}
	length := new(uint256.Int).SetBytes32(word[:])
	if !length.IsUint64() {
		return 0, fmt.Errorf("%w: %v at %v", ErrLengthOverflow, length, v.slot)
	}
	return length.Uint64(), nil
}

func (v StorageVec[S]) IsEmpty() (bool, error) {
	length, err := v.Len()
	return length == 0, err
}

// SetLen overwrites the length without touching any elements. Growing back over
// indices that were previously truncated exposes whatever bytes they held.
func (v StorageVec[S]) SetLen(length uint64) error {
	return v.cache.SetWord(v.slot, uint256.NewInt(length).Bytes32())
}

func (v StorageVec[S]) locate(index uint64) (common.Hash, uint8) {
	size := SizeOf[S]()
	density := uint64(32 / size)
	slot := addToSlot(v.Base(), index/density)
	return slot, uint8(index%density) * size
}

func (v StorageVec[S]) contains(index uint64) (bool, error) {
	length, err := v.Len()
	if err != nil {
		return false, err
	}
	return index < length, nil
}

// Get returns a shared guard over an element, or false if index is out of range.
func (v StorageVec[S]) Get(index uint64) (*StorageGuard[S], bool, error) {
	present, err := v.contains(index)
	if err != nil || !present {
		return nil, false, err
	}
	slot, offset := v.locate(index)
	guard, err := Borrow[S](v.cache, slot, offset)
	if err != nil {
		return nil, false, err
	}
	return guard, true, nil
}

// GetMut returns an exclusive guard over an element, or false if index is out of range.
func (v StorageVec[S]) GetMut(index uint64) (*StorageGuardMut[S], bool, error) {
	present, err := v.contains(index)
	if err != nil || !present {
		return nil, false, err
	}
	slot, offset := v.locate(index)
	guard, err := BorrowMut[S](v.cache, slot, offset)
	if err != nil {
		return nil, false, err
	}
	return guard, true, nil
}

// RawGet returns an unguarded accessor. Nothing stops the caller from aliasing it.
func (v StorageVec[S]) RawGet(index uint64) (S, bool, error) {
	present, err := v.contains(index)
	if err != nil || !present {
		var zero S
		return zero, false, err
	}
	return v.rawAt(index), true, nil
}

func (v StorageVec[S]) rawAt(index uint64) S {
	slot, offset := v.locate(index)
	return open[S](v.cache, slot, offset)
}

func (v StorageVec[S]) grow() (uint64, error) {
	length, err := v.Len()
	if err != nil {
		return 0, err
	}
	if length == math.MaxUint64 {
		return 0, fmt.Errorf("%w: vector at %v is full", ErrLengthOverflow, v.slot)
	}
	return length, v.SetLen(length + 1)
}

// Open appends an element and returns an exclusive guard so it can be built in place.
// The new element's storage is not cleared.
func (v StorageVec[S]) Open() (*StorageGuardMut[S], error) {
	if err := v.cache.checkWritable(); err != nil {
		return nil, err
	}
	index, err := v.grow()
	if err != nil {
		return nil, err
	}
	slot, offset := v.locate(index)
	return BorrowMut[S](v.cache, slot, offset)
}

// Pop shrinks the vector by one and returns a guard over the removed element,
// whose bytes are left in place. It returns false if the vector is empty.
func (v StorageVec[S]) Pop() (*StorageGuard[S], bool, error) {
	if err := v.cache.checkWritable(); err != nil {
		return nil, false, err
	}
	length, err := v.Len()
	if err != nil || length == 0 {
		return nil, false, err
	}
	slot, offset := v.locate(length - 1)
	guard, err := Borrow[S](v.cache, slot, offset)
	if err != nil {
		return nil, false, err
	}
	if err := v.SetLen(length - 1); err != nil {
		guard.Release()
		return nil, false, err
	}
	return guard, true, nil
}

// Truncate shrinks the vector to length, leaving removed elements' bytes in place.
func (v StorageVec[S]) Truncate(length uint64) error {
	current, err := v.Len()
	if err != nil {
		return err
	}
	if length < current {
		return v.SetLen(length)
	}
	return nil
}

// Push appends a value to a vector of sized elements.
func Push[S SizedStorageType[S, V], V any](v StorageVec[S], value V) error {
	if err := v.cache.checkWritable(); err != nil {
		return err
	}
	length, err := v.Len()
	if err != nil {
		return err
	}
	if length == math.MaxUint64 {
		return fmt.Errorf("%w: vector at %v is full", ErrLengthOverflow, v.slot)
	}
	slot, offset := v.locate(length)
	b, err := v.cache.acquire(slot, offset, SizeOf[S](), true)
	if err != nil {
		return err
	}
	defer v.cache.release(b)
	if err := open[S](v.cache, slot, offset).SetExact(value); err != nil {
		return err
	}
	return v.SetLen(length + 1)
}

// PopValue removes the last element, erasing its bytes, and returns its value.
// It returns false if the vector is empty.
func PopValue[S SizedStorageType[S, V], V any](v StorageVec[S]) (V, bool, error) {
	var zero V
	if err := v.cache.checkWritable(); err != nil {
		return zero, false, err
	}
	length, err := v.Len()
	if err != nil || length == 0 {
		return zero, false, err
	}
	slot, offset := v.locate(length - 1)
	b, err := v.cache.acquire(slot, offset, SizeOf[S](), true)
	if err != nil {
		return zero, false, err
	}
	defer v.cache.release(b)
	elem := open[S](v.cache, slot, offset)
	value, err := elem.Get()
	if err != nil {
		return zero, false, err
	}
	if err := elem.Erase(); err != nil {
		return zero, false, err
	}
	if err := v.SetLen(length - 1); err != nil {
		return zero, false, err
	}
	return value, true, nil
}
