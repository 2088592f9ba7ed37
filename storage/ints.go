// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StorageUint is an unsigned big-endian integer of W bytes.
type StorageUint[W Width] struct {
	location
}

type (
	StorageU8   = StorageUint[W1]
	StorageU16  = StorageUint[W2]
	StorageU32  = StorageUint[W4]
	StorageU64  = StorageUint[W8]
	StorageU96  = StorageUint[W12]
	StorageU128 = StorageUint[W16]
	StorageU160 = StorageUint[W20]
	StorageU192 = StorageUint[W24]
	StorageU224 = StorageUint[W28]
	StorageU256 = StorageUint[W32]
)

func (StorageUint[W]) Size() uint8 {
	return widthOf[W]()
}

func (StorageUint[W]) New(cache *StorageCache, slot common.Hash, offset uint8) StorageUint[W] {
	return StorageUint[W]{location{cache, slot, offset}}
}

func (s StorageUint[W]) Get() (*uint256.Int, error) {
	return s.cache.GetUint(s.slot, s.offset, s.Size())
}

func (s StorageUint[W]) Set(value *uint256.Int) error {
	return s.cache.SetUint(s.slot, s.offset, s.Size(), value)
}

func (s StorageUint[W]) SetExact(value *uint256.Int) error {
	return s.Set(value)
}

func (s StorageUint[W]) Erase() error {
	return s.erase(s.Size())
}

func (s StorageUint[W]) GetUint64() (uint64, error) {
	value, err := s.Get()
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() {
		return 0, fmt.Errorf("%w: %v exceeds uint64", ErrValueOverflow, value)
	}
	return value.Uint64(), nil
}

func (s StorageUint[W]) SetUint64(value uint64) error {
	return s.Set(uint256.NewInt(value))
}

// Increment adds one and returns the new value.
func (s StorageUint[W]) Increment() (*uint256.Int, error) {
	value, err := s.Get()
	if err != nil {
		return nil, err
	}
	if _, overflow := value.AddOverflow(value, uint256.NewInt(1)); overflow {
		return nil, fmt.Errorf("%w: incrementing a %d byte integer past its maximum", ErrValueOverflow, s.Size())
	}
	return value, s.Set(value)
}

// StorageSigned is a two's complement integer of W bytes.
type StorageSigned[W Width] struct {
	location
}

type (
	StorageI8   = StorageSigned[W1]
	StorageI16  = StorageSigned[W2]
	StorageI32  = StorageSigned[W4]
	StorageI64  = StorageSigned[W8]
	StorageI96  = StorageSigned[W12]
	StorageI128 = StorageSigned[W16]
	StorageI160 = StorageSigned[W20]
	StorageI192 = StorageSigned[W24]
	StorageI224 = StorageSigned[W28]
	StorageI256 = StorageSigned[W32]
)

func (StorageSigned[W]) Size() uint8 {
	return widthOf[W]()
}

func (StorageSigned[W]) New(cache *StorageCache, slot common.Hash, offset uint8) StorageSigned[W] {
	return StorageSigned[W]{location{cache, slot, offset}}
}

func (s StorageSigned[W]) Get() (*big.Int, error) {
	return s.cache.GetSigned(s.slot, s.offset, s.Size())
}

func (s StorageSigned[W]) Set(value *big.Int) error {
	return s.cache.SetSigned(s.slot, s.offset, s.Size(), value)
}

func (s StorageSigned[W]) SetExact(value *big.Int) error {
	return s.Set(value)
}

func (s StorageSigned[W]) Erase() error {
	return s.erase(s.Size())
}

func (s StorageSigned[W]) GetInt64() (int64, error) {
	value, err := s.Get()
	if err != nil {
		return 0, err
	}
	if !value.IsInt64() {
		return 0, fmt.Errorf("%w: %v exceeds int64", ErrValueOverflow, value)
	}
	return value.Int64(), nil
}

func (s StorageSigned[W]) SetInt64(value int64) error {
	return s.Set(big.NewInt(value))
}
