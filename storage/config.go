// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"

	flag "github.com/spf13/pflag"
)

type Config struct {
	TraceAccesses bool `koanf:"trace-accesses"`
	CheckBorrows  bool `koanf:"check-borrows"`
	BaseCacheSize int  `koanf:"base-cache-size"`
}

var DefaultConfig = Config{
	TraceAccesses: false,
	CheckBorrows:  true,
	BaseCacheSize: 1024,
}

func ConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.Bool(prefix+".trace-accesses", DefaultConfig.TraceAccesses, "log every word loaded from or stored to the host at trace level")
	f.Bool(prefix+".check-borrows", DefaultConfig.CheckBorrows, "refuse guarded handles that would alias a live mutable handle")
	f.Int(prefix+".base-cache-size", DefaultConfig.BaseCacheSize, "number of derived vector base slots to memoize (0 = disable)")
}

func (c *Config) Validate() error {
	if c.BaseCacheSize < 0 {
		return errors.New("base-cache-size must not be negative")
	}
	return nil
}
