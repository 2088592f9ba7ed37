// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/stylus-storage/storage"
)

type command struct {
	name        string
	usage       string
	description string
	args        int
	run         func(cache *storage.StorageCache, args []string, out io.Writer) error
}

var commands = []command{
	{"get-word", "get-word <slot>", "print the word at a slot", 1, getWord},
	{"set-word", "set-word <slot> <value>", "overwrite the word at a slot", 2, setWord},
	{"get-uint", "get-uint <slot> <offset> <size>", "print an unsigned integer packed in a word", 3, getUint},
	{"set-uint", "set-uint <slot> <offset> <size> <value>", "write an unsigned integer packed in a word", 4, setUint},
	{"vec-len", "vec-len <slot>", "print the length of a uint256 array", 1, vecLen},
	{"vec-get", "vec-get <slot> <index>", "print an element of a uint256 array", 2, vecGet},
	{"vec-push", "vec-push <slot> <value>", "append to a uint256 array", 2, vecPush},
	{"vec-pop", "vec-pop <slot>", "remove and print the last element of a uint256 array", 1, vecPop},
}

var errUsage = errors.New("usage")

// run executes one command in its own storage frame.
func run(ctx context.Context, config *StorageToolConfig, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	for _, command := range commands {
		if command.name != args[0] {
			continue
		}
		if len(args)-1 != command.args {
			return fmt.Errorf("%w: %s", errUsage, command.usage)
		}
		return withFrame(ctx, config, func(cache *storage.StorageCache) error {
			return command.run(cache, args[1:], out)
		})
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

// parseUint256 accepts decimal or 0x-prefixed hex.
func parseUint256(s string) (*uint256.Int, error) {
	value, ok := new(big.Int).SetString(s, 0)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	ret, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("%q exceeds 256 bits", s)
	}
	return ret, nil
}

func parseSlot(s string) (common.Hash, error) {
	value, err := parseUint256(s)
	if err != nil {
		return common.Hash{}, err
	}
	return value.Bytes32(), nil
}

func parseUint8(s string) (uint8, error) {
	value, err := strconv.ParseUint(s, 10, 8)
	return uint8(value), err
}

func getWord(cache *storage.StorageCache, args []string, out io.Writer) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	word, err := cache.GetWord(slot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, word.Hex())
	return err
}

func setWord(cache *storage.StorageCache, args []string, _ io.Writer) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	value, err := parseUint256(args[1])
	if err != nil {
		return err
	}
	return cache.SetWord(slot, value.Bytes32())
}

func parseRange(args []string) (common.Hash, uint8, uint8, error) {
	slot, err := parseSlot(args[0])
	if err != nil {
		return common.Hash{}, 0, 0, err
	}
	offset, err := parseUint8(args[1])
	if err != nil {
		return common.Hash{}, 0, 0, fmt.Errorf("invalid offset: %w", err)
	}
	size, err := parseUint8(args[2])
	if err != nil {
		return common.Hash{}, 0, 0, fmt.Errorf("invalid size: %w", err)
	}
	return slot, offset, size, nil
}

func getUint(cache *storage.StorageCache, args []string, out io.Writer) error {
	slot, offset, size, err := parseRange(args)
	if err != nil {
		return err
	}
	value, err := cache.GetUint(slot, offset, size)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, value.Dec())
	return err
}

func setUint(cache *storage.StorageCache, args []string, _ io.Writer) error {
	slot, offset, size, err := parseRange(args)
	if err != nil {
		return err
	}
	value, err := parseUint256(args[3])
	if err != nil {
		return err
	}
	return cache.SetUint(slot, offset, size, value)
}

func openVec(cache *storage.StorageCache, arg string) (storage.StorageVec[storage.StorageU256], error) {
	slot, err := parseSlot(arg)
	if err != nil {
		return storage.StorageVec[storage.StorageU256]{}, err
	}
	return storage.Field[storage.StorageVec[storage.StorageU256]](cache, slot), nil
}

func vecLen(cache *storage.StorageCache, args []string, out io.Writer) error {
	vec, err := openVec(cache, args[0])
	if err != nil {
		return err
	}
	length, err := vec.Len()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, length)
	return err
}

func vecGet(cache *storage.StorageCache, args []string, out io.Writer) error {
	vec, err := openVec(cache, args[0])
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}
	guard, ok, err := vec.Get(index)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index %d out of range", index)
	}
	defer guard.Release()
	value, err := guard.Inner().Get()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, value.Dec())
	return err
}

func vecPush(cache *storage.StorageCache, args []string, _ io.Writer) error {
	vec, err := openVec(cache, args[0])
	if err != nil {
		return err
	}
	value, err := parseUint256(args[1])
	if err != nil {
		return err
	}
	return storage.Push(vec, value)
}

func vecPop(cache *storage.StorageCache, args []string, out io.Writer) error {
	vec, err := openVec(cache, args[0])
	if err != nil {
		return err
	}
	value, ok, err := storage.PopValue[storage.StorageU256, *uint256.Int](vec)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("array is empty")
	}
	_, err = fmt.Fprintln(out, value.Dec())
	return err
}
