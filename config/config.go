// Package config handles intcode.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
)

const FileName = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	VM        VMConfig        `toml:"vm"`
	Log       LogConfig       `toml:"log"`
	Storage   StorageConfig   `toml:"storage"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

type VMConfig struct {
	WordWidth   int   `toml:"word_width"`
	MemoryLimit int64 `toml:"memory_limit"`
}

type LogConfig struct {
	Level   string   `toml:"level"`
	Modules []string `toml:"modules"`
}

type StorageConfig struct {
	// Path of the LevelDB program store; empty keeps programs in memory.
	Path string `toml:"path"`
}

type TelemetryConfig struct {
	// OTLP/HTTP collector host:port; empty disables span export.
	Endpoint string `toml:"endpoint"`
}

func Default() *Config {
	return &Config{
		VM: VMConfig{
			WordWidth:   int(intcode.Width64),
			MemoryLimit: intcode.DefaultMemoryLimit,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load parses the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file. Without
// one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) Validate() error {
	switch intcode.WordWidth(c.VM.WordWidth) {
	case intcode.Width32, intcode.Width64:
	default:
		return fmt.Errorf("vm.word_width must be 32 or 64, got %d", c.VM.WordWidth)
	}
	if c.VM.MemoryLimit <= 0 {
		return fmt.Errorf("vm.memory_limit must be positive, got %d", c.VM.MemoryLimit)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// VMOptions converts the [vm] section into VM options.
func (c *Config) VMOptions() []intcode.Option {
	return []intcode.Option{
		intcode.WithWordWidth(intcode.WordWidth(c.VM.WordWidth)),
		intcode.WithMemoryLimit(c.VM.MemoryLimit),
	}
}

// ApplyLogging initializes the root logger and enables the configured
// debug modules.
func (c *Config) ApplyLogging() error {
	if err := log.InitLogger(c.Log.Level); err != nil {
		return err
	}
	for _, m := range c.Log.Modules {
		log.EnableModule(m)
	}
	return nil
}
