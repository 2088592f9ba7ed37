// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package genericconf

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"gopkg.in/natefinch/lumberjack.v2"
)

var droppedLogLinesCounter = metrics.NewRegisteredCounter("log/file/dropped", nil)

// fileWriter hands records to a goroutine that writes them to a rotating file.
// Records are dropped rather than blocking the logger when the buffer is full.
type fileWriter struct {
	logger  *lumberjack.Logger
	records chan []byte
	done    chan struct{}

	mutex  sync.Mutex
	closed bool
}

func newFileWriter(config *FileLoggingConfig, filename string) *fileWriter {
	w := &fileWriter{
		logger: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			LocalTime:  config.LocalTime,
			Compress:   config.Compress,
		},
		records: make(chan []byte, config.BufSize),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		for record := range w.records {
			_, _ = w.logger.Write(record)
		}
	}()
	return w
}

// Write never blocks. Records that arrive after close are dropped.
func (w *fileWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		droppedLogLinesCounter.Inc(1)
		return len(p), nil
	}
	record := append([]byte{}, p...)
	select {
	case w.records <- record:
	default:
		droppedLogLinesCounter.Inc(1)
	}
	return len(p), nil
}

// close waits for buffered records to be written.
func (w *fileWriter) close() error {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return nil
	}
	w.closed = true
	close(w.records)
	w.mutex.Unlock()
	<-w.done
	return w.logger.Close()
}

var (
	fileWriterMutex   sync.Mutex
	currentFileWriter *fileWriter
)

// CloseFileLog flushes and closes the file installed by InitLog, if any.
func CloseFileLog() error {
	fileWriterMutex.Lock()
	defer fileWriterMutex.Unlock()
	if currentFileWriter == nil {
		return nil
	}
	err := currentFileWriter.close()
	currentFileWriter = nil
	return err
}

// InitLog installs the default logger: stderr, plus a rotating file when enabled.
func InitLog(logType string, logLevel string, fileLoggingConfig *FileLoggingConfig, pathResolver func(string) string) error {
	slogLevel, err := ToSlogLevel(logLevel)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	if err := CloseFileLog(); err != nil {
		return fmt.Errorf("failed to close file writer: %w", err)
	}
	var output io.Writer = os.Stderr
	if fileLoggingConfig.Enable {
		if err := fileLoggingConfig.Validate(); err != nil {
			return err
		}
		fileWriterMutex.Lock()
		currentFileWriter = newFileWriter(fileLoggingConfig, pathResolver(fileLoggingConfig.File))
		output = io.MultiWriter(os.Stderr, currentFileWriter)
		fileWriterMutex.Unlock()
	}
	handler, err := HandlerFromLogType(logType, output)
	if err != nil {
		return fmt.Errorf("error parsing log type when creating handler: %w", err)
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(slogLevel)
	log.SetDefault(log.NewLogger(glogger))
	return nil
}
