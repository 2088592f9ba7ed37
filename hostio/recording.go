// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type AccessKind uint8

const (
	Load AccessKind = iota
	Store
)

func (k AccessKind) String() string {
	switch k {
	case Load:
		return "load"
	case Store:
		return "store"
	default:
		return "unknown"
	}
}

// Access is one call that reached the underlying host.
type Access struct {
	Kind  AccessKind
	Slot  common.Hash
	Value common.Hash
}

// RecordingHost forwards to an inner host and remembers every call, in order.
type RecordingHost struct {
	inner    Host
	mutex    sync.Mutex
	accesses []Access
}

func NewRecordingHost(inner Host) *RecordingHost {
	return &RecordingHost{inner: inner}
}

func (h *RecordingHost) LoadWord(slot common.Hash) (common.Hash, error) {
	value, err := h.inner.LoadWord(slot)
	if err != nil {
		return value, err
	}
	h.record(Access{Load, slot, value})
	return value, nil
}

func (h *RecordingHost) StoreWord(slot, value common.Hash) error {
	if err := h.inner.StoreWord(slot, value); err != nil {
		return err
	}
	h.record(Access{Store, slot, value})
	return nil
}

func (h *RecordingHost) record(access Access) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.accesses = append(h.accesses, access)
}

// Accesses returns a copy of everything recorded so far.
func (h *RecordingHost) Accesses() []Access {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]Access{}, h.accesses...)
}

func (h *RecordingHost) Count(kind AccessKind) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	count := 0
	for _, access := range h.accesses {
		if access.Kind == kind {
			count++
		}
	}
	return count
}

func (h *RecordingHost) Loads() int {
	return h.Count(Load)
}

func (h *RecordingHost) Stores() int {
	return h.Count(Store)
}

// Reset forgets everything recorded so far.
func (h *RecordingHost) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.accesses = nil
}

// Close closes the inner host if it holds resources.
func (h *RecordingHost) Close() error {
	if closer, ok := h.inner.(ClosableHost); ok {
		return closer.Close()
	}
	return nil
}
