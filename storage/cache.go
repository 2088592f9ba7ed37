// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

// Package storage lets a program declare typed fields and dynamic arrays over a
// word-addressed store, packing sub-word values the way Solidity lays out contract
// storage. All word traffic goes through a StorageCache, which reads each slot from
// the host at most once and writes back only the words that changed.
package storage

import (
	"bytes"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/stylus-storage/hostio"
)

var (
	cacheHitCounter   = metrics.NewRegisteredCounter("storage/cache/hits", nil)
	hostLoadCounter   = metrics.NewRegisteredCounter("storage/host/loads", nil)
	hostStoreCounter  = metrics.NewRegisteredCounter("storage/host/stores", nil)
	cacheFlushCounter = metrics.NewRegisteredCounter("storage/cache/flushes", nil)
	cacheClearCounter = metrics.NewRegisteredCounter("storage/cache/clears", nil)
)

type cacheState struct {
	mutex   sync.Mutex
	host    hostio.Host
	config  *Config
	words   map[common.Hash]*StorageWord
	borrows map[common.Hash][]*borrow
	bases   *lru.Cache[common.Hash, common.Hash]
	closed  bool
}

// StorageCache is the write-back cache of one execution context.
// A read-only view shares its entries but refuses every write.
type StorageCache struct {
	*cacheState
	readOnly bool
}

func NewStorageCache(host hostio.Host, config *Config) *StorageCache {
	if config == nil {
		config = &DefaultConfig
	}
	state := &cacheState{
		host:    host,
		config:  config,
		words:   make(map[common.Hash]*StorageWord),
		borrows: make(map[common.Hash][]*borrow),
	}
	if config.BaseCacheSize > 0 {
		// can't fail because the size is positive
		state.bases, _ = lru.New[common.Hash, common.Hash](config.BaseCacheSize)
	}
	return &StorageCache{cacheState: state}
}

// ReadOnly returns a view of the same cache that refuses writes.
func (c *StorageCache) ReadOnly() *StorageCache {
	if c.readOnly {
		return c
	}
	return &StorageCache{cacheState: c.cacheState, readOnly: true}
}

func (c *StorageCache) IsReadOnly() bool {
	return c.readOnly
}

func (c *StorageCache) checkWritable() error {
	if c.readOnly {
		return ErrWriteProtection
	}
	return nil
}

// loadLocked returns the cached word for slot, reading it from the host on first access.
func (c *cacheState) loadLocked(slot common.Hash) (*StorageWord, error) {
	if c.closed {
		return nil, ErrFrameClosed
	}
	if word, ok := c.words[slot]; ok {
		cacheHitCounter.Inc(1)
		return word, nil
	}
	value, err := c.host.LoadWord(slot)
	if err != nil {
		return nil, fmt.Errorf("loading slot %v: %w", slot, err)
	}
	hostLoadCounter.Inc(1)
	if c.config.TraceAccesses {
		log.Trace("storage load", "slot", slot, "value", value)
	}
	word := newKnownWord(value)
	c.words[slot] = word
	return word, nil
}

// GetWord retrieves a 32-byte word, reading the host only if the slot isn't cached.
func (c *StorageCache) GetWord(slot common.Hash) (common.Hash, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	word, err := c.loadLocked(slot)
	if err != nil {
		return common.Hash{}, err
	}
	return word.value, nil
}

// SetWord overwrites a whole word. The host isn't read: the word is simply marked dirty.
func (c *StorageCache) SetWord(slot, value common.Hash) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return ErrFrameClosed
	}
	c.words[slot] = newUnknownWord(value)
	return nil
}

// GetBytes retrieves size bytes of the word at slot, starting offset bytes from the
// most-significant end.
func (c *StorageCache) GetBytes(slot common.Hash, offset, size uint8) ([]byte, error) {
	if err := checkRange(offset, size); err != nil {
		return nil, err
	}
	word, err := c.GetWord(slot)
	if err != nil {
		return nil, err
	}
	return common.CopyBytes(word[offset : offset+size]), nil
}

// SetBytes overwrites len(value) bytes of the word at slot, starting offset bytes from
// the most-significant end. The rest of the word is preserved, so a partial write reads
// the host if the slot isn't cached yet.
func (c *StorageCache) SetBytes(slot common.Hash, offset uint8, value []byte) error {
	if len(value) > 32 {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrWordBoundary, len(value), offset)
	}
	size := uint8(len(value))
	if err := checkRange(offset, size); err != nil {
		return err
	}
	if size == 32 {
		return c.SetWord(slot, common.BytesToHash(value))
	}
	if err := c.checkWritable(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	word, err := c.loadLocked(slot)
	if err != nil {
		return err
	}
	copy(word.value[offset:offset+size], value)
	return nil
}

// GetUint reads a big-endian unsigned integer of size bytes.
func (c *StorageCache) GetUint(slot common.Hash, offset, size uint8) (*uint256.Int, error) {
	data, err := c.GetBytes(slot, offset, size)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(data), nil
}

// SetUint writes a big-endian unsigned integer of size bytes.
func (c *StorageCache) SetUint(slot common.Hash, offset, size uint8, value *uint256.Int) error {
	if err := checkRange(offset, size); err != nil {
		return err
	}
	if value.BitLen() > 8*int(size) {
		return fmt.Errorf("%w: %v in %d bytes", ErrValueOverflow, value, size)
	}
	full := value.Bytes32()
	return c.SetBytes(slot, offset, full[32-size:])
}

// GetSigned reads a two's complement integer of size bytes.
func (c *StorageCache) GetSigned(slot common.Hash, offset, size uint8) (*big.Int, error) {
	raw, err := c.GetUint(slot, offset, size)
	if err != nil {
		return nil, err
	}
	bits := 8 * uint(size)
	value := raw.ToBig()
	if value.Bit(int(bits)-1) == 1 {
		value.Sub(value, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	return value, nil
}

// SetSigned writes a two's complement integer of size bytes.
func (c *StorageCache) SetSigned(slot common.Hash, offset, size uint8, value *big.Int) error {
	if err := checkRange(offset, size); err != nil {
		return err
	}
	bits := 8 * uint(size)
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if value.Cmp(limit) >= 0 || value.Cmp(new(big.Int).Neg(limit)) < 0 {
		return fmt.Errorf("%w: %v in %d bytes", ErrValueOverflow, value, size)
	}
	raw := new(big.Int).Set(value)
	if raw.Sign() < 0 {
		raw.Add(raw, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	// can't overflow because the range was checked above
	unsigned, _ := uint256.FromBig(raw)
	return c.SetUint(slot, offset, size, unsigned)
}

// Flush writes every dirty word to the host in ascending slot order.
// Entries stay cached, so values changed by a re-entrant call won't be observed:
// use Clear whenever another execution context may touch the same storage.
func (c *StorageCache) Flush() error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return ErrFrameClosed
	}
	return c.flushLocked()
}

func (c *cacheState) flushLocked() error {
	dirty := make([]common.Hash, 0, len(c.words))
	for slot, word := range c.words {
		if word.Dirty() {
			dirty = append(dirty, slot)
		}
	}
	slices.SortFunc(dirty, func(a, b common.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	for _, slot := range dirty {
		word := c.words[slot]
		if err := c.host.StoreWord(slot, word.value); err != nil {
			return fmt.Errorf("storing slot %v: %w", slot, err)
		}
		hostStoreCounter.Inc(1)
		if c.config.TraceAccesses {
			log.Trace("storage store", "slot", slot, "value", word.value)
		}
		word.markKnown()
	}
	cacheFlushCounter.Inc(1)
	if len(dirty) > 0 {
		log.Debug("flushed storage cache", "stores", len(dirty), "entries", len(c.words))
	}
	return nil
}

// Clear flushes, then drops every entry so the next access re-reads the host.
func (c *StorageCache) Clear() error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return ErrFrameClosed
	}
	if err := c.flushLocked(); err != nil {
		return err
	}
	c.words = make(map[common.Hash]*StorageWord)
	cacheClearCounter.Inc(1)
	return nil
}

// Discard drops every entry without writing anything back.
func (c *StorageCache) Discard() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.words) > 0 {
		log.Debug("discarding storage cache", "entries", len(c.words))
	}
	c.words = make(map[common.Hash]*StorageWord)
}

// Peek returns a copy of the cached entry for slot without touching the host.
func (c *StorageCache) Peek(slot common.Hash) (StorageWord, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	word, ok := c.words[slot]
	if !ok {
		return StorageWord{}, false
	}
	ret := StorageWord{value: word.value}
	if word.known != nil {
		known := *word.known
		ret.known = &known
	}
	return ret, true
}

// DirtySlots lists the slots a flush would write, in ascending order.
func (c *StorageCache) DirtySlots() []common.Hash {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var dirty []common.Hash
	for slot, word := range c.words {
		if word.Dirty() {
			dirty = append(dirty, slot)
		}
	}
	slices.SortFunc(dirty, func(a, b common.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	return dirty
}

func (c *StorageCache) Entries() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.words)
}

// baseSlot derives where a dynamic array rooted at slot keeps its elements.
func (c *cacheState) baseSlot(slot common.Hash) common.Hash {
	if c.bases != nil {
		if base, ok := c.bases.Get(slot); ok {
			return base
		}
	}
	base := crypto.Keccak256Hash(slot.Bytes())
	if c.bases != nil {
		c.bases.Add(slot, base)
	}
	return base
}

// addToSlot offsets a slot by delta words, wrapping modulo 2^256.
func addToSlot(slot common.Hash, delta uint64) common.Hash {
	sum := new(uint256.Int).SetBytes32(slot[:])
	sum.Add(sum, uint256.NewInt(delta))
	return sum.Bytes32()
}
