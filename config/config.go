// Package config holds the TOML-backed settings shared by the flipjump
// command-line driver: assembler defaults, garbage-read policy, and
// debugger/display preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the toolchain's persisted configuration.
type Config struct {
	// Assembler settings
	Assemble struct {
		WordSize      int  `toml:"word_size"` // 8, 16, 32 or 64
		MaxParseErrs  int  `toml:"max_parse_errors"`
		WarnUnusedArg bool `toml:"warn_unused_macro_param"`
	} `toml:"assemble"`

	// Interpreter settings
	Run struct {
		GarbagePolicy  string `toml:"garbage_policy"` // stop, warn, slow, continue
		SlowReadDelay  string `toml:"slow_read_delay"`
		EagerZeroLimit int    `toml:"eager_zero_limit"`
	} `toml:"run"`

	// Debugger settings
	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assemble.WordSize = 64
	cfg.Assemble.MaxParseErrs = 40
	cfg.Assemble.WarnUnusedArg = true

	cfg.Run.GarbagePolicy = "stop"
	cfg.Run.SlowReadDelay = "1ms"
	cfg.Run.EagerZeroLimit = 1000

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "flipjump")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "flipjump")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, returning the
// defaults if it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// WordSize validates and returns the configured assembler word size.
func (c *Config) WordSize() (int, error) {
	switch c.Assemble.WordSize {
	case 8, 16, 32, 64:
		return c.Assemble.WordSize, nil
	default:
		return 0, fmt.Errorf("invalid word size %d: must be 8, 16, 32 or 64", c.Assemble.WordSize)
	}
}
