// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryHost keeps words in a map. Zero words are not stored.
type MemoryHost struct {
	mutex sync.Mutex
	words map[common.Hash]common.Hash
}

func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		words: make(map[common.Hash]common.Hash),
	}
}

func (h *MemoryHost) LoadWord(slot common.Hash) (common.Hash, error) {
	return h.Get(slot), nil
}

func (h *MemoryHost) StoreWord(slot, value common.Hash) error {
	h.Set(slot, value)
	return nil
}

// Get reads a word directly, as an outside observer of the store would.
func (h *MemoryHost) Get(slot common.Hash) common.Hash {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.words[slot]
}

// Set writes a word directly, as another execution context would.
func (h *MemoryHost) Set(slot, value common.Hash) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if value == (common.Hash{}) {
		delete(h.words, slot)
		return
	}
	h.words[slot] = value
}

// Len returns the number of non-zero words held.
func (h *MemoryHost) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.words)
}
