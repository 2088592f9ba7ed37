// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/slog"

	"github.com/offchainlabs/stylus-storage/hostio"
	"github.com/offchainlabs/stylus-storage/util/testhelpers"
)

func TestRunWritesBackOnSuccess(t *testing.T) {
	memory := hostio.NewMemoryHost()
	recorder := hostio.NewRecordingHost(memory)
	slot := testhelpers.RandomHash()

	err := Run(recorder, nil, func(cache *StorageCache) error {
		counter := Field[StorageU64](cache, slot)
		for i := 0; i < 10; i++ {
			if _, err := counter.Increment(); err != nil {
				return err
			}
		}
		return nil
	})
	Require(t, err)
	if recorder.Loads() != 1 || recorder.Stores() != 1 {
		Fail(t, "expected one load and one store, got", recorder.Loads(), recorder.Stores())
	}
	if memory.Get(slot) != common.BigToHash(uint256.NewInt(10).ToBig()) {
		Fail(t, "wrong stored value", memory.Get(slot))
	}
}

func TestRunDiscardsOnError(t *testing.T) {
	memory := hostio.NewMemoryHost()
	slot := testhelpers.RandomHash()
	failure := errors.New("reverted")

	err := Run(memory, nil, func(cache *StorageCache) error {
		Require(t, cache.SetWord(slot, testhelpers.RandomHash()))
		return failure
	})
	if !errors.Is(err, failure) {
		Fail(t, "wrong error", err)
	}
	if memory.Len() != 0 {
		Fail(t, "aborted frame wrote to the host")
	}
}

func TestRunDiscardsOnPanic(t *testing.T) {
	memory := hostio.NewMemoryHost()
	slot := testhelpers.RandomHash()
	defer func() {
		if recover() == nil {
			Fail(t, "panic was swallowed")
		}
		if memory.Len() != 0 {
			Fail(t, "panicking frame wrote to the host")
		}
	}()
	_ = Run(memory, nil, func(cache *StorageCache) error {
		Require(t, cache.SetWord(slot, testhelpers.RandomHash()))
		panic("out of gas")
	})
}

func TestFrameCallClearsCache(t *testing.T) {
	memory := hostio.NewMemoryHost()
	recorder := hostio.NewRecordingHost(memory)
	frame := Enter(recorder, nil)
	cache := frame.Cache()
	slot := testhelpers.RandomHash()

	Require(t, cache.SetWord(slot, common.HexToHash("0x01")))
	external := common.HexToHash("0x02")
	err := frame.Call(func() error {
		// the callee sees our write, then replaces it
		if memory.Get(slot) != common.HexToHash("0x01") {
			return errors.New("callee didn't see the caller's write")
		}
		memory.Set(slot, external)
		return nil
	})
	Require(t, err)

	value, err := cache.GetWord(slot)
	Require(t, err)
	if value != external {
		Fail(t, "caller didn't observe the callee's write", value)
	}
	Require(t, frame.Exit())
	if recorder.Stores() != 1 {
		Fail(t, "exit rewrote a clean word", recorder.Stores())
	}
}

func TestClosedFrame(t *testing.T) {
	frame := Enter(hostio.NewMemoryHost(), nil)
	cache := frame.Cache()
	Require(t, frame.Exit())
	if !frame.Closed() {
		Fail(t, "frame should be closed")
	}
	if !errors.Is(frame.Exit(), ErrFrameClosed) {
		Fail(t, "second exit should fail")
	}
	frame.Abort()

	if _, err := cache.GetWord(common.Hash{}); !errors.Is(err, ErrFrameClosed) {
		Fail(t, "read after exit, got", err)
	}
	if !errors.Is(cache.SetWord(common.Hash{}, common.Hash{}), ErrFrameClosed) {
		Fail(t, "write after exit")
	}
	if !errors.Is(cache.Flush(), ErrFrameClosed) || !errors.Is(cache.Clear(), ErrFrameClosed) {
		Fail(t, "flush after exit")
	}
	if _, err := BorrowMut[StorageU8](cache, common.Hash{}, 0); !errors.Is(err, ErrFrameClosed) {
		Fail(t, "borrow after exit, got", err)
	}
}

func TestExitWarnsAboutLiveGuards(t *testing.T) {
	logHandler := testhelpers.InitTestLog(t, slog.LevelInfo)
	frame := Enter(hostio.NewMemoryHost(), nil)
	guard, err := BorrowMut[StorageU32](frame.Cache(), testhelpers.RandomHash(), 0)
	Require(t, err)
	Require(t, frame.Exit())
	if !logHandler.WasLogged("live mutable guards") {
		Fail(t, "exit didn't warn about the live guard")
	}
	// releasing after the frame closed is harmless
	guard.Release()
}
