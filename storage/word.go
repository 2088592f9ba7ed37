// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"github.com/ethereum/go-ethereum/common"
)

// StorageWord is the cached state of one slot.
type StorageWord struct {
	// the current value of the slot
	value common.Hash
	// the value in the host store, if known
	known *common.Hash
}

// newKnownWord caches a value just read from the host.
func newKnownWord(known common.Hash) *StorageWord {
	return &StorageWord{
		value: known,
		known: &known,
	}
}

// newUnknownWord caches a value without knowing what the host holds.
func newUnknownWord(value common.Hash) *StorageWord {
	return &StorageWord{value: value}
}

// Dirty reports whether the word must be written back to the host.
func (w *StorageWord) Dirty() bool {
	return w.known == nil || w.value != *w.known
}

func (w *StorageWord) Value() common.Hash {
	return w.value
}

// Known returns the value last confirmed in the host, if any.
func (w *StorageWord) Known() (common.Hash, bool) {
	if w.known == nil {
		return common.Hash{}, false
	}
	return *w.known, true
}

func (w *StorageWord) markKnown() {
	v := w.value // new var to avoid aliasing
	w.known = &v
}
