// Package config loads rigseq settings. Layers, lowest priority first:
// embedded defaults, a TOML file, RIGSEQ_ environment variables and
// explicit overrides (command line flags).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "rigseq.toml"

const envPrefix = "RIGSEQ_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

type Config struct {
	Legacy LegacyConfig `koanf:"legacy"`
	Log    LogConfig    `koanf:"log"`
	Output OutputConfig `koanf:"output"`
}

// LegacyConfig controls node remapping. With Enabled false documents are
// passed through with their references as written.
type LegacyConfig struct {
	Enabled bool `koanf:"enabled"`
}

type LogConfig struct {
	Verbosity int  `koanf:"verbosity"`
	DumpNodes bool `koanf:"dump_nodes"`
}

type OutputConfig struct {
	Format string `koanf:"format"`
	// Strict makes commands fail when the pass recorded errors.
	Strict bool `koanf:"strict"`
}

var validFormats = map[string]bool{"json": true, "yaml": true}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the configuration. path names the TOML file to read; when it
// is empty DefaultFile is used if present. overrides are dotted keys
// ("output.format") applied last.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps RIGSEQ_OUTPUT_FORMAT to output.format. Only the first
// underscore separates section from key, so RIGSEQ_LOG_DUMP_NODES maps to
// log.dump_nodes.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) Validate() error {
	c.Output.Format = strings.ToLower(c.Output.Format)
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format %q: must be json or yaml", c.Output.Format)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("invalid log.verbosity %d", c.Log.Verbosity)
	}
	return nil
}

// Default returns the embedded defaults, ignoring files and environment.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(err)
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic(err)
	}
	return cfg
}
