// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"errors"
	"slices"

	"github.com/cockroachdb/pebble"
)

type pebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) a pebble database in dir.
func NewPebbleStore(dir string) (KeyValueStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &pebbleStore{db}, nil
}

func (s *pebbleStore) Get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// data is only valid until the closer is closed
	ret := slices.Clone(data)
	return ret, closer.Close()
}

func (s *pebbleStore) Put(key []byte, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

func (s *pebbleStore) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
