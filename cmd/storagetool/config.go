// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/offchainlabs/stylus-storage/cmd/genericconf"
	"github.com/offchainlabs/stylus-storage/cmd/util/confighelpers"
	"github.com/offchainlabs/stylus-storage/hostio"
	"github.com/offchainlabs/stylus-storage/storage"
)

type StorageToolConfig struct {
	Host        hostio.Config                 `koanf:"host"`
	Storage     storage.Config                `koanf:"storage"`
	LogLevel    string                        `koanf:"log-level"`
	LogType     string                        `koanf:"log-type"`
	LogDir      string                        `koanf:"log-dir"`
	FileLogging genericconf.FileLoggingConfig `koanf:"file-logging"`
	Conf        genericconf.ConfConfig        `koanf:"conf"`
}

var DefaultStorageToolConfig = StorageToolConfig{
	Host:        hostio.DefaultConfig,
	Storage:     storage.DefaultConfig,
	LogLevel:    "warn",
	LogType:     "plaintext",
	LogDir:      "",
	FileLogging: genericconf.DefaultFileLoggingConfig,
	Conf:        genericconf.ConfConfigDefault,
}

func addFlags(f *flag.FlagSet) {
	hostio.ConfigAddOptions("host", f)
	storage.ConfigAddOptions("storage", f)
	f.String("log-level", DefaultStorageToolConfig.LogLevel, "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", DefaultStorageToolConfig.LogType, "log type (plaintext or json)")
	f.String("log-dir", DefaultStorageToolConfig.LogDir, "directory relative file logs are resolved against (default: working directory)")
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	genericconf.ConfConfigAddOptions("conf", f)
}

func (c *StorageToolConfig) Validate() error {
	if err := c.Host.Validate(); err != nil {
		return fmt.Errorf("invalid host config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}
	if err := c.FileLogging.Validate(); err != nil {
		return err
	}
	return nil
}

// parseConfig returns the configuration and the positional command line.
// A nil config with no error means the configuration was dumped.
func parseConfig(args []string) (*StorageToolConfig, []string, error) {
	f := flag.NewFlagSet("storagetool", flag.ContinueOnError)
	addFlags(f)

	k, err := confighelpers.BeginCommonParse(f, args)
	if err != nil {
		return nil, nil, err
	}

	var config StorageToolConfig
	if err := confighelpers.EndCommonParse(k, &config); err != nil {
		return nil, nil, err
	}
	if config.Conf.Dump {
		c, err := confighelpers.DumpConfig(k, map[string]interface{}{
			"host.redis-url": "",
		})
		if err != nil {
			return nil, nil, err
		}
		fmt.Println(string(c))
		return nil, nil, nil
	}
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	return &config, f.Args(), nil
}
