// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// StorageType is implemented by everything that can live in storage.
// New must not perform any I/O: it only binds a view to its location.
type StorageType[S any] interface {
	// Size is the number of bytes the type occupies in its word, at most 32.
	Size() uint8
	New(cache *StorageCache, slot common.Hash, offset uint8) S
}

// SizedStorageType is a StorageType whose whole value can be read, replaced, and erased.
type SizedStorageType[S, V any] interface {
	StorageType[S]
	Get() (V, error)
	SetExact(value V) error
	Erase() error
}

// Width fixes the byte size of a scalar accessor.
type Width interface {
	Bytes() uint8
}

type (
	W1  struct{}
	W2  struct{}
	W4  struct{}
	W8  struct{}
	W12 struct{}
	W16 struct{}
	W20 struct{}
	W24 struct{}
	W28 struct{}
	W32 struct{}
)

func (W1) Bytes() uint8  { return 1 }
func (W2) Bytes() uint8  { return 2 }
func (W4) Bytes() uint8  { return 4 }
func (W8) Bytes() uint8  { return 8 }
func (W12) Bytes() uint8 { return 12 }
func (W16) Bytes() uint8 { return 16 }
func (W20) Bytes() uint8 { return 20 }
func (W24) Bytes() uint8 { return 24 }
func (W28) Bytes() uint8 { return 28 }
func (W32) Bytes() uint8 { return 32 }

func widthOf[W Width]() uint8 {
	var w W
	return w.Bytes()
}

// SizeOf returns the byte size of a storage type.
func SizeOf[S StorageType[S]]() uint8 {
	var zero S
	return zero.Size()
}

func open[S StorageType[S]](cache *StorageCache, slot common.Hash, offset uint8) S {
	var zero S
	return zero.New(cache, slot, offset)
}

// Field opens a value that occupies the low-order bytes of its own word.
func Field[S StorageType[S]](cache *StorageCache, slot common.Hash) S {
	return open[S](cache, slot, 32-SizeOf[S]())
}

// FieldAt opens a value packed at a byte offset within a word.
func FieldAt[S StorageType[S]](cache *StorageCache, slot common.Hash, offset uint8) (S, error) {
	size := SizeOf[S]()
	if err := checkRange(offset, size); err != nil {
		var zero S
		return zero, fmt.Errorf("opening field at %v: %w", slot, err)
	}
	return open[S](cache, slot, offset), nil
}

// location is embedded by every scalar accessor.
type location struct {
	cache  *StorageCache
	slot   common.Hash
	offset uint8
}

func (l location) Slot() common.Hash {
	return l.slot
}

func (l location) Offset() uint8 {
	return l.offset
}

func (l location) erase(size uint8) error {
	return l.cache.SetBytes(l.slot, l.offset, make([]byte, size))
}
