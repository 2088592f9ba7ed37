// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package confighelpers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
)

// BeginCommonParse layers configuration sources, lowest priority first:
// flag defaults, conf.file entries, conf.string, environment, then the command line.
// Positional arguments are left in f.Args() for the caller.
func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	var k = koanf.New(".")

	// Load defaults from command line defaults, which will be overridden below
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	for _, configFile := range k.Strings("conf.file") {
		if err := k.Load(file.Provider(configFile), json.Parser()); err != nil {
			return nil, fmt.Errorf("error loading local config file %q: %w", configFile, err)
		}
	}

	if len(k.String("conf.string")) > 0 {
		if err := k.Load(rawbytes.Provider([]byte(k.String("conf.string"))), json.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config string: %w", err)
		}
	}

	if err := loadEnvironmentVariables(k); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	// Any settings from command line should override settings from config file
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error loading command line: %w", err)
	}

	return k, nil
}

func loadEnvironmentVariables(k *koanf.Koanf) error {
	envPrefix := k.String("conf.env-prefix")
	if len(envPrefix) == 0 {
		return nil
	}
	return k.Load(env.Provider(envPrefix+"_", ".", func(s string) string {
		// FOO__BAR -> foo-bar to handle dash in config names
		s = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix+"_")), "__", "-")
		return strings.ReplaceAll(s, "_", ".")
	}), nil)
}

// EndCommonParse decodes the layered configuration into config, rejecting unknown keys.
func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Metadata: nil,
		Result:   config,
		TagName:  "koanf",
	}
	return k.UnmarshalWithConf("", config, koanf.UnmarshalConf{DecoderConfig: &decoderConfig})
}

// DumpConfig renders the active configuration as JSON after applying overrides,
// which is how secrets are blanked out before printing.
func DumpConfig(k *koanf.Koanf, overrides map[string]interface{}) ([]byte, error) {
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, fmt.Errorf("error removing extra parameters before dump: %w", err)
	}
	c, err := k.Marshal(json.Parser())
	if err != nil {
		return nil, fmt.Errorf("unable to marshal config file to JSON: %w", err)
	}
	return c, nil
}

func PrintErrorAndExit(err error, usage func(string)) {
	if err != nil && errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "%s\n", err.Error())
	usage(os.Args[0])
	os.Exit(1)
}
