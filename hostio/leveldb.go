// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type levelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (or creates) a goleveldb database in dir.
func NewLevelDBStore(dir string) (KeyValueStore, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		OpenFilesCacheCapacity: 16,
	})
	if err != nil {
		return nil, err
	}
	return &levelDBStore{db}, nil
}

func (s *levelDBStore) Get(key []byte) ([]byte, error) {
	data, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *levelDBStore) Put(key []byte, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *levelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

func (s *levelDBStore) Close() error {
	return s.db.Close()
}
