// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
	"fmt"
)

var (
	ErrWordBoundary    = errors.New("access crosses a storage word boundary")
	ErrValueOverflow   = errors.New("value does not fit in its storage field")
	ErrWidthMismatch   = errors.New("value has the wrong width for its storage field")
	ErrWriteProtection = errors.New("write protection")
	ErrAliasedBorrow   = errors.New("storage region is already borrowed")
	ErrLengthOverflow  = errors.New("vector length overflow")
	ErrFrameClosed     = errors.New("storage frame is closed")
)

func checkRange(offset, size uint8) error {
	if size == 0 || uint(offset)+uint(size) > 32 {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrWordBoundary, size, offset)
	}
	return nil
}
