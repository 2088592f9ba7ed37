// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type borrow struct {
	slot    common.Hash
	offset  uint8
	size    uint8
	mutable bool
}

func (b *borrow) overlaps(offset, size uint8) bool {
	return b.offset < offset+size && offset < b.offset+b.size
}

// acquire registers a borrow of a byte range, refusing it if it would alias a live mutable one.
func (c *StorageCache) acquire(slot common.Hash, offset, size uint8, mutable bool) (*borrow, error) {
	if err := checkRange(offset, size); err != nil {
		return nil, err
	}
	if mutable {
		if err := c.checkWritable(); err != nil {
			return nil, err
		}
	}
	if !c.config.CheckBorrows {
		return nil, nil
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil, ErrFrameClosed
	}
	for _, live := range c.borrows[slot] {
		if (mutable || live.mutable) && live.overlaps(offset, size) {
			return nil, fmt.Errorf("%w: %d bytes at offset %d of %v", ErrAliasedBorrow, size, offset, slot)
		}
	}
	b := &borrow{slot, offset, size, mutable}
	c.borrows[slot] = append(c.borrows[slot], b)
	return b, nil
}

func (c *StorageCache) release(b *borrow) {
	if b == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		// closing the frame dropped every borrow
		return
	}
	live := c.borrows[b.slot]
	for i, other := range live {
		if other == b {
			live = append(live[:i], live[i+1:]...)
			if len(live) == 0 {
				delete(c.borrows, b.slot)
			} else {
				c.borrows[b.slot] = live
			}
			return
		}
	}
	panic(fmt.Sprintf("released unknown borrow of %v", b.slot))
}

// LiveBorrows counts the guards that haven't been released yet.
func (c *StorageCache) LiveBorrows() (shared, mutable int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, live := range c.borrows {
		for _, b := range live {
			if b.mutable {
				mutable++
			} else {
				shared++
			}
		}
	}
	return shared, mutable
}

// StorageGuard gives read access to a value for as long as it isn't released.
// The accessor it wraps is bound to a read-only view of the cache.
type StorageGuard[S any] struct {
	inner   S
	release func()
}

func (g *StorageGuard[S]) Inner() S {
	return g.inner
}

// Release ends the borrow. Calling it more than once is harmless.
func (g *StorageGuard[S]) Release() {
	g.release()
}

// StorageGuardMut gives exclusive access to a value until released.
type StorageGuardMut[S any] struct {
	inner   S
	release func()
}

func (g *StorageGuardMut[S]) Inner() S {
	return g.inner
}

func (g *StorageGuardMut[S]) Release() {
	g.release()
}

func releaser(cache *StorageCache, b *borrow) func() {
	var once sync.Once
	return func() {
		once.Do(func() { cache.release(b) })
	}
}

// Borrow opens a shared guard over a value at (slot, offset).
func Borrow[S StorageType[S]](cache *StorageCache, slot common.Hash, offset uint8) (*StorageGuard[S], error) {
	b, err := cache.acquire(slot, offset, SizeOf[S](), false)
	if err != nil {
		return nil, err
	}
	return &StorageGuard[S]{
		inner:   open[S](cache.ReadOnly(), slot, offset),
		release: releaser(cache, b),
	}, nil
}

// BorrowMut opens an exclusive guard over a value at (slot, offset).
func BorrowMut[S StorageType[S]](cache *StorageCache, slot common.Hash, offset uint8) (*StorageGuardMut[S], error) {
	b, err := cache.acquire(slot, offset, SizeOf[S](), true)
	if err != nil {
		return nil, err
	}
	return &StorageGuardMut[S]{
		inner:   open[S](cache, slot, offset),
		release: releaser(cache, b),
	}, nil
}
