// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	flag "github.com/spf13/pflag"

	"github.com/offchainlabs/stylus-storage/util/redisutil"
)

const (
	EngineMemory  = "memory"
	EngineStateDB = "statedb"
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
	EngineBadger  = "badger"
	EngineRedis   = "redis"
)

type Config struct {
	Engine       string        `koanf:"engine"`
	Path         string        `koanf:"path"`
	Prefix       string        `koanf:"prefix"`
	RedisURL     string        `koanf:"redis-url"`
	RedisTimeout time.Duration `koanf:"redis-timeout"`
	Account      string        `koanf:"account"`
}

var DefaultConfig = Config{
	Engine:       EngineMemory,
	Path:         "",
	Prefix:       "s",
	RedisURL:     "",
	RedisTimeout: 5 * time.Second,
	Account:      DefaultProgramAddress.Hex(),
}

func ConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.String(prefix+".engine", DefaultConfig.Engine, "host storage engine (memory, statedb, leveldb, pebble, badger or redis)")
	f.String(prefix+".path", DefaultConfig.Path, "directory of the on-disk database (leveldb, pebble and badger engines)")
	f.String(prefix+".prefix", DefaultConfig.Prefix, "key prefix under which words are persisted")
	f.String(prefix+".redis-url", DefaultConfig.RedisURL, "redis url (redis engine)")
	f.Duration(prefix+".redis-timeout", DefaultConfig.RedisTimeout, "timeout of each redis operation (0 = none)")
	f.String(prefix+".account", DefaultConfig.Account, "account whose storage is used (statedb engine)")
}

func (c *Config) Validate() error {
	switch c.Engine {
	case EngineMemory:
	case EngineStateDB:
		if !common.IsHexAddress(c.Account) {
			return fmt.Errorf("invalid account %q", c.Account)
		}
	case EngineLevelDB, EnginePebble, EngineBadger:
		if c.Path == "" {
			return fmt.Errorf("engine %s requires a path", c.Engine)
		}
	case EngineRedis:
		if c.RedisURL == "" {
			return errors.New("engine redis requires a redis-url")
		}
	default:
		return fmt.Errorf("unknown host engine %q", c.Engine)
	}
	return nil
}

// Open creates the host described by config. The caller must close it.
func Open(ctx context.Context, config *Config) (ClosableHost, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var store KeyValueStore
	var err error
	switch config.Engine {
	case EngineMemory:
		return NopCloser(NewMemoryHost()), nil
	case EngineStateDB:
		statedb := NewMemoryBackedStateDB()
		return NopCloser(NewStateDBHost(statedb, common.HexToAddress(config.Account))), nil
	case EngineLevelDB:
		store, err = NewLevelDBStore(config.Path)
	case EnginePebble:
		store, err = NewPebbleStore(config.Path)
	case EngineBadger:
		store, err = NewBadgerStore(config.Path)
	case EngineRedis:
		client, clientErr := redisutil.RedisClientFromURL(config.RedisURL)
		if clientErr != nil {
			return nil, clientErr
		}
		store = NewRedisStore(ctx, client, config.RedisTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", config.Engine, err)
	}
	log.Info("opened host storage", "engine", config.Engine, "path", config.Path)
	return NewKVHost(store, []byte(config.Prefix)), nil
}
