// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var ErrNotFound = errors.New("not found")

// KeyValueStore is the minimal byte store a KVHost persists words into.
// Get returns ErrNotFound for keys that were never put or were deleted.
type KeyValueStore interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Close() error
}

// KVHost persists each word under prefix || slot. Zero words are deleted rather than stored.
type KVHost struct {
	store  KeyValueStore
	prefix []byte
}

func NewKVHost(store KeyValueStore, prefix []byte) *KVHost {
	return &KVHost{
		store:  store,
		prefix: append([]byte{}, prefix...),
	}
}

func (h *KVHost) key(slot common.Hash) []byte {
	key := make([]byte, 0, len(h.prefix)+common.HashLength)
	key = append(key, h.prefix...)
	return append(key, slot.Bytes()...)
}

func (h *KVHost) LoadWord(slot common.Hash) (common.Hash, error) {
	data, err := h.store.Get(h.key(slot))
	if errors.Is(err, ErrNotFound) {
		return common.Hash{}, nil
	}
	if err != nil {
		return common.Hash{}, fmt.Errorf("loading slot %v: %w", slot, err)
	}
	if len(data) != common.HashLength {
		return common.Hash{}, fmt.Errorf("corrupt word at slot %v: %d bytes", slot, len(data))
	}
	return common.BytesToHash(data), nil
}

func (h *KVHost) StoreWord(slot, value common.Hash) error {
	var err error
	if value == (common.Hash{}) {
		err = h.store.Delete(h.key(slot))
	} else {
		err = h.store.Put(h.key(slot), value.Bytes())
	}
	if err != nil {
		return fmt.Errorf("storing slot %v: %w", slot, err)
	}
	return nil
}

func (h *KVHost) Close() error {
	return h.store.Close()
}
