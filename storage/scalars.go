// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StorageFixedBytes holds exactly W raw bytes.
type StorageFixedBytes[W Width] struct {
	location
}

type (
	StorageB8   = StorageFixedBytes[W1]
	StorageB16  = StorageFixedBytes[W2]
	StorageB32  = StorageFixedBytes[W4]
	StorageB64  = StorageFixedBytes[W8]
	StorageB96  = StorageFixedBytes[W12]
	StorageB128 = StorageFixedBytes[W16]
	StorageB160 = StorageFixedBytes[W20]
	StorageB192 = StorageFixedBytes[W24]
	StorageB224 = StorageFixedBytes[W28]
	StorageB256 = StorageFixedBytes[W32]
)

func (StorageFixedBytes[W]) Size() uint8 {
	return widthOf[W]()
}

func (StorageFixedBytes[W]) New(cache *StorageCache, slot common.Hash, offset uint8) StorageFixedBytes[W] {
	return StorageFixedBytes[W]{location{cache, slot, offset}}
}

func (s StorageFixedBytes[W]) Get() ([]byte, error) {
	return s.cache.GetBytes(s.slot, s.offset, s.Size())
}

func (s StorageFixedBytes[W]) Set(value []byte) error {
	if len(value) != int(s.Size()) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrWidthMismatch, len(value), s.Size())
	}
	return s.cache.SetBytes(s.slot, s.offset, value)
}

func (s StorageFixedBytes[W]) SetExact(value []byte) error {
	return s.Set(value)
}

func (s StorageFixedBytes[W]) Erase() error {
	return s.erase(s.Size())
}

type StorageAddress struct {
	location
}

func (StorageAddress) Size() uint8 {
	return common.AddressLength
}

func (StorageAddress) New(cache *StorageCache, slot common.Hash, offset uint8) StorageAddress {
	return StorageAddress{location{cache, slot, offset}}
}

func (s StorageAddress) Get() (common.Address, error) {
	data, err := s.cache.GetBytes(s.slot, s.offset, common.AddressLength)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(data), nil
}

func (s StorageAddress) Set(value common.Address) error {
	return s.cache.SetBytes(s.slot, s.offset, value.Bytes())
}

func (s StorageAddress) SetExact(value common.Address) error {
	return s.Set(value)
}

func (s StorageAddress) Erase() error {
	return s.erase(common.AddressLength)
}

// StorageBlockNumber is a block height packed into 8 bytes.
type StorageBlockNumber struct {
	location
}

func (StorageBlockNumber) Size() uint8 {
	return 8
}

func (StorageBlockNumber) New(cache *StorageCache, slot common.Hash, offset uint8) StorageBlockNumber {
	return StorageBlockNumber{location{cache, slot, offset}}
}

func (s StorageBlockNumber) Get() (uint64, error) {
	value, err := s.cache.GetUint(s.slot, s.offset, 8)
	if err != nil {
		return 0, err
	}
	return value.Uint64(), nil
}

func (s StorageBlockNumber) Set(value uint64) error {
	return s.cache.SetUint(s.slot, s.offset, 8, uint256.NewInt(value))
}

func (s StorageBlockNumber) SetExact(value uint64) error {
	return s.Set(value)
}

func (s StorageBlockNumber) Erase() error {
	return s.erase(8)
}

// StorageBlockHash always fills its word.
type StorageBlockHash struct {
	location
}

func (StorageBlockHash) Size() uint8 {
	return common.HashLength
}

func (StorageBlockHash) New(cache *StorageCache, slot common.Hash, offset uint8) StorageBlockHash {
	return StorageBlockHash{location{cache, slot, offset}}
}

func (s StorageBlockHash) Get() (common.Hash, error) {
	if err := checkRange(s.offset, common.HashLength); err != nil {
		return common.Hash{}, err
	}
	return s.cache.GetWord(s.slot)
}

func (s StorageBlockHash) Set(value common.Hash) error {
	if err := checkRange(s.offset, common.HashLength); err != nil {
		return err
	}
	return s.cache.SetWord(s.slot, value)
}

func (s StorageBlockHash) SetExact(value common.Hash) error {
	return s.Set(value)
}

func (s StorageBlockHash) Erase() error {
	return s.Set(common.Hash{})
}

// StorageBool is a single byte that is either 0 or 1.
type StorageBool struct {
	location
}

func (StorageBool) Size() uint8 {
	return 1
}

func (StorageBool) New(cache *StorageCache, slot common.Hash, offset uint8) StorageBool {
	return StorageBool{location{cache, slot, offset}}
}

func (s StorageBool) Get() (bool, error) {
	data, err := s.cache.GetBytes(s.slot, s.offset, 1)
	if err != nil {
		return false, err
	}
	return data[0] != 0, nil
}

func (s StorageBool) Set(value bool) error {
	var data byte
	if value {
		data = 1
	}
	return s.cache.SetBytes(s.slot, s.offset, []byte{data})
}

func (s StorageBool) SetExact(value bool) error {
	return s.Set(value)
}

func (s StorageBool) Erase() error {
	return s.erase(1)
}
