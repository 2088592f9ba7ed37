// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/stylus-storage/hostio"
)

// Frame scopes a StorageCache to one execution context.
// Every exit path must go through Exit or Abort.
type Frame struct {
	cache *StorageCache
}

func Enter(host hostio.Host, config *Config) *Frame {
	return &Frame{cache: NewStorageCache(host, config)}
}

func (f *Frame) Cache() *StorageCache {
	return f.cache
}

// Call runs an operation that may re-enter this storage, such as a call into
// another program. The cache is cleared first so both sides see the host's state.
func (f *Frame) Call(fn func() error) error {
	if err := f.cache.Clear(); err != nil {
		return fmt.Errorf("clearing storage before external call: %w", err)
	}
	return fn()
}

// Exit writes back every change and closes the frame.
func (f *Frame) Exit() error {
	c := f.cache.cacheState
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return ErrFrameClosed
	}
	if live := c.liveMutableLocked(); live > 0 {
		log.Warn("exiting storage frame with live mutable guards", "count", live)
	}
	err := c.flushLocked()
	c.closeLocked()
	return err
}

// Abort closes the frame without writing anything back. It's safe to call after Exit.
func (f *Frame) Abort() {
	c := f.cache.cacheState
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	if len(c.words) > 0 {
		log.Debug("aborting storage frame", "entries", len(c.words), "dirty", c.dirtyLocked())
	}
	c.closeLocked()
}

func (f *Frame) Closed() bool {
	c := f.cache.cacheState
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

func (c *cacheState) closeLocked() {
	c.words = make(map[common.Hash]*StorageWord)
	c.borrows = make(map[common.Hash][]*borrow)
	c.closed = true
}

func (c *cacheState) liveMutableLocked() int {
	count := 0
	for _, live := range c.borrows {
		for _, b := range live {
			if b.mutable {
				count++
			}
		}
	}
	return count
}

func (c *cacheState) dirtyLocked() int {
	count := 0
	for _, word := range c.words {
		if word.Dirty() {
			count++
		}
	}
	return count
}

// Run executes body in a fresh frame. Changes are written back only if body
// succeeds; an error or panic discards them.
func Run(host hostio.Host, config *Config, body func(cache *StorageCache) error) error {
	frame := Enter(host, config)
	defer func() {
		if r := recover(); r != nil {
			frame.Abort()
			panic(r)
		}
	}()
	if err := body(frame.Cache()); err != nil {
		frame.Abort()
		return err
	}
	return frame.Exit()
}
