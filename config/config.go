// Package config loads the intcode.toml settings shared by the commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "intcode.toml"

type Config struct {
	Log     Log     `toml:"log"`
	VM      VM      `toml:"vm"`
	Network Network `toml:"network"`
	API     API     `toml:"api"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type VM struct {
	// instructions allowed per run, 0 for no limit
	StepLimit  int64 `toml:"step-limit"`
	DenseLimit int64 `toml:"dense-limit"`
}

type Network struct {
	Size       int  `toml:"size"`
	NAT        bool `toml:"nat"`
	IdleRounds int  `toml:"idle-rounds"`
	MaxRounds  int  `toml:"max-rounds"`
}

type API struct {
	Addr      string `toml:"addr"`
	CacheSize int    `toml:"cache-size"`
	StepLimit int64  `toml:"step-limit"`
}

func Default() *Config {
	return &Config{
		Log: Log{
			Level: "info",
		},
		VM: VM{
			DenseLimit: 1 << 22,
		},
		Network: Network{
			Size:       50,
			IdleRounds: 2,
		},
		API: API{
			Addr:      ":3000",
			CacheSize: 128,
			StepLimit: 10_000_000,
		},
	}
}

// Load reads the file at path over the defaults. An empty path loads
// FileName from the working directory if it exists, and the defaults
// otherwise.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		if _, err := os.Stat(FileName); err != nil {
			return c, nil
		}
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Network.Size <= 0 || c.Network.Size > 255 {
		return fmt.Errorf("network size %d out of range 1..255", c.Network.Size)
	}
	if c.VM.DenseLimit <= 0 {
		return fmt.Errorf("dense limit must be positive, got %d", c.VM.DenseLimit)
	}
	if c.API.CacheSize <= 0 {
		return fmt.Errorf("api cache size must be positive, got %d", c.API.CacheSize)
	}
	return nil
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
