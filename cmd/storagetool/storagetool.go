// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

// storagetool reads and edits a persistent host through the typed storage layer.
// Every invocation runs in its own storage frame: changes are written back only
// if the command succeeds.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/stylus-storage/cmd/genericconf"
	"github.com/offchainlabs/stylus-storage/cmd/util/confighelpers"
	"github.com/offchainlabs/stylus-storage/hostio"
	"github.com/offchainlabs/stylus-storage/storage"
)

func printSampleUsage(progname string) {
	fmt.Printf("\n")
	fmt.Printf("Sample usage:                  %s --host.engine leveldb --host.path ./db get-word 0x0 \n", progname)
	fmt.Printf("Commands:\n")
	for _, command := range commands {
		fmt.Printf("  %-40s %s\n", command.usage, command.description)
	}
}

func main() {
	os.Exit(mainImpl())
}

func mainImpl() int {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	config, args, err := parseConfig(os.Args[1:])
	if err != nil {
		confighelpers.PrintErrorAndExit(err, printSampleUsage)
	}
	if config == nil {
		return 0
	}

	err = genericconf.InitLog(config.LogType, config.LogLevel, &config.FileLogging, genericconf.DefaultPathResolver(config.LogDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing log: %v\n", err)
		return 1
	}
	defer func() {
		_ = genericconf.CloseFileLog()
	}()

	if err := run(ctx, config, args, os.Stdout); err != nil {
		log.Error("storagetool failed", "err", err)
		return 1
	}
	return 0
}

func openHost(ctx context.Context, config *StorageToolConfig) (hostio.ClosableHost, error) {
	host, err := hostio.Open(ctx, &config.Host)
	if err != nil {
		return nil, err
	}
	if config.Storage.TraceAccesses {
		return hostio.NewRecordingHost(host), nil
	}
	return host, nil
}

func withFrame(ctx context.Context, config *StorageToolConfig, body func(cache *storage.StorageCache) error) error {
	host, err := openHost(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		if err := host.Close(); err != nil {
			log.Warn("error closing host", "err", err)
		}
	}()
	err = storage.Run(host, &config.Storage, body)
	if recorder, ok := host.(*hostio.RecordingHost); ok {
		log.Info("host traffic", "loads", recorder.Loads(), "stores", recorder.Stores())
	}
	return err
}
