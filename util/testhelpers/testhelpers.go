// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package testhelpers

import (
	"context"
	"crypto/rand"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/slog"
)

// Fail a test should an error occur
func RequireImpl(t testing.TB, err error, printables ...interface{}) {
	t.Helper()
	if err != nil {
		t.Fatal(printables, err)
	}
}

func FailImpl(t testing.TB, printables ...interface{}) {
	t.Helper()
	t.Fatal(printables...)
}

func RandomizeSlice(slice []byte) []byte {
	_, err := rand.Read(slice)
	if err != nil {
		panic(err)
	}
	return slice
}

func RandomSlice(size uint64) []byte {
	return RandomizeSlice(make([]byte, size))
}

func RandomHash() common.Hash {
	var hash common.Hash
	RandomizeSlice(hash[:])
	return hash
}

func RandomAddress() common.Address {
	var address common.Address
	RandomizeSlice(address[:])
	return address
}

// LogHandler tees records to stderr and keeps their messages so tests can assert on them.
type LogHandler struct {
	mutex    *sync.Mutex
	t        *testing.T
	messages *[]string
	inner    slog.Handler
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mutex.Lock()
	*h.messages = append(*h.messages, record.Message)
	h.mutex.Unlock()
	return h.inner.Handle(ctx, record)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{h.mutex, h.t, h.messages, h.inner.WithAttrs(attrs)}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{h.mutex, h.t, h.messages, h.inner.WithGroup(name)}
}

func (h *LogHandler) WasLogged(pattern string) bool {
	re, err := regexp.Compile(pattern)
	RequireImpl(h.t, err)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, message := range *h.messages {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// InitTestLog installs a capturing handler as the default logger until the test ends.
func InitTestLog(t *testing.T, level slog.Level) *LogHandler {
	handler := &LogHandler{
		mutex:    &sync.Mutex{},
		t:        t,
		messages: &[]string{},
		inner:    log.NewTerminalHandler(os.Stderr, false),
	}
	previous := log.Root()
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	log.SetDefault(log.NewLogger(glogger))
	t.Cleanup(func() { log.SetDefault(previous) })
	return handler
}
