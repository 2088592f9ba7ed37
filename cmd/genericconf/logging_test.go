// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package genericconf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	flag "github.com/spf13/pflag"
	"golang.org/x/exp/slog"

	"github.com/offchainlabs/stylus-storage/util/testhelpers"
)

func TestToSlogLevel(t *testing.T) {
	for name, expected := range map[string]slog.Level{
		"trace": log.LevelTrace,
		"DEBUG": log.LevelDebug,
		"Info":  log.LevelInfo,
		"warn":  log.LevelWarn,
		"error": log.LevelError,
		"crit":  log.LevelCrit,
	} {
		level, err := ToSlogLevel(name)
		testhelpers.RequireImpl(t, err)
		if level != expected {
			testhelpers.FailImpl(t, "level", name, "parsed as", level)
		}
	}
	if _, err := ToSlogLevel("loud"); err == nil {
		testhelpers.FailImpl(t, "parsed an invalid level")
	}
}

func TestHandlerFromLogType(t *testing.T) {
	var output bytes.Buffer
	handler, err := HandlerFromLogType("json", &output)
	testhelpers.RequireImpl(t, err)
	log.NewLogger(handler).Info("hello", "answer", 42)
	if !strings.Contains(output.String(), `"answer":42`) {
		testhelpers.FailImpl(t, "unexpected json output", output.String())
	}
	if _, err := HandlerFromLogType("xml", &output); err == nil {
		testhelpers.FailImpl(t, "accepted an invalid log type")
	}
}

func TestInitLogWritesFile(t *testing.T) {
	previous := log.Root()
	defer log.SetDefault(previous)

	dir := t.TempDir()
	config := DefaultFileLoggingConfig
	config.Enable = true
	config.File = "test.log"
	testhelpers.RequireImpl(t, InitLog("plaintext", "info", &config, DefaultPathResolver(dir)))
	log.Info("written to the file")
	log.Debug("filtered by level")
	testhelpers.RequireImpl(t, CloseFileLog())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	testhelpers.RequireImpl(t, err)
	if !strings.Contains(string(data), "written to the file") {
		testhelpers.FailImpl(t, "log file is missing the record", string(data))
	}
	if strings.Contains(string(data), "filtered by level") {
		testhelpers.FailImpl(t, "log file has a filtered record")
	}

	if err := InitLog("plaintext", "nope", &config, DefaultPathResolver(dir)); err == nil {
		testhelpers.FailImpl(t, "accepted an invalid level")
	}
}

func TestFileWriterAfterClose(t *testing.T) {
	config := DefaultFileLoggingConfig
	path := filepath.Join(t.TempDir(), "closed.log")
	writer := newFileWriter(&config, path)
	if _, err := writer.Write([]byte("before close\n")); err != nil {
		testhelpers.FailImpl(t, "write failed", err)
	}
	testhelpers.RequireImpl(t, writer.close())
	data, err := os.ReadFile(path)
	testhelpers.RequireImpl(t, err)
	if string(data) != "before close\n" {
		testhelpers.FailImpl(t, "buffered record wasn't written on close", string(data))
	}

	// a logger still holding the writer must not panic
	n, err := writer.Write([]byte("after close\n"))
	testhelpers.RequireImpl(t, err)
	if n != len("after close\n") {
		testhelpers.FailImpl(t, "short write", n)
	}
	testhelpers.RequireImpl(t, writer.close())
}

func TestFileLoggingBufSize(t *testing.T) {
	config := DefaultFileLoggingConfig
	testhelpers.RequireImpl(t, config.Validate())
	config.BufSize = 0
	if config.Validate() == nil {
		testhelpers.FailImpl(t, "accepted an unbuffered file writer")
	}
	config.Enable = true
	if err := InitLog("plaintext", "info", &config, DefaultPathResolver(t.TempDir())); err == nil {
		testhelpers.FailImpl(t, "installed an unbuffered file writer")
	}
}

func TestConfConfigAddOptions(t *testing.T) {
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	ConfConfigAddOptions("conf", f)
	FileLoggingConfigAddOptions("file-logging", f)
	testhelpers.RequireImpl(t, f.Parse([]string{"--conf.file", "a.json,b.json", "--file-logging.enable"}))
	files, err := f.GetStringSlice("conf.file")
	testhelpers.RequireImpl(t, err)
	enabled, err := f.GetBool("file-logging.enable")
	testhelpers.RequireImpl(t, err)
	if len(files) != 2 || !enabled {
		testhelpers.FailImpl(t, "unexpected flags", files, enabled)
	}
}

func TestDefaultPathResolver(t *testing.T) {
	resolve := DefaultPathResolver("/data")
	if resolve("x.log") != "/data/x.log" || resolve("/abs.log") != "/abs.log" {
		testhelpers.FailImpl(t, "wrong resolution")
	}
}
