// Package config holds daemon configuration. Values come from three
// layers: built-in defaults, an optional TOML file in the config
// directory, and TERMHOST_* environment variables, each layer
// overriding the one before it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/termhost/termhost/internal/shared/paths"
)

const envPrefix = "termhost"

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Terminal  TerminalConfig  `toml:"terminal"`
	State     StateConfig     `toml:"state"`
	Theme     ThemeConfig     `toml:"theme"`
	Recording RecordingConfig `toml:"recording"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" toml:"port"`
	Host string `envconfig:"HOST" toml:"host"`
}

// TerminalConfig holds PTY and session lifecycle configuration.
type TerminalConfig struct {
	// Shell overrides the spawned command; empty means $SHELL, then
	// /bin/bash.
	Shell     string   `envconfig:"SHELL_CMD" toml:"shell"`
	ShellArgs []string `envconfig:"SHELL_ARGS" toml:"shell_args"`

	DefaultCols uint16 `envconfig:"DEFAULT_COLS" toml:"default_cols"`
	DefaultRows uint16 `envconfig:"DEFAULT_ROWS" toml:"default_rows"`

	// ReadyTimeout force-destroys a session whose pane is never
	// acknowledged by the display client.
	ReadyTimeout time.Duration `envconfig:"READY_TIMEOUT" toml:"ready_timeout"`

	// ExitGrace is how long an exit notice stays visible before the
	// session is destroyed.
	ExitGrace time.Duration `envconfig:"EXIT_GRACE" toml:"exit_grace"`

	// OutputBufferCap bounds the per-session chunk buffer used while a
	// session is not ready; overflow drops new chunks.
	OutputBufferCap int `envconfig:"OUTPUT_BUFFER_CAP" toml:"output_buffer_cap"`
}

// StateConfig holds persistence configuration.
type StateConfig struct {
	Dir string `envconfig:"STATE_DIR" toml:"dir"`
}

// ThemeConfig holds theme resolution configuration.
type ThemeConfig struct {
	Path  string `envconfig:"THEME_PATH" toml:"path"`
	Name  string `envconfig:"THEME_NAME" toml:"name"`
	Watch bool   `envconfig:"THEME_WATCH" toml:"watch"`
}

// RecordingConfig holds session output recording configuration.
type RecordingConfig struct {
	Enabled bool   `envconfig:"RECORDING_ENABLED" toml:"enabled"`
	Dir     string `envconfig:"RECORDING_DIR" toml:"dir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development"`
}

// RateLimitConfig holds HTTP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" toml:"enabled"`
}

// Load builds configuration from defaults, the optional config file,
// and environment variables, in that order. Defaults live only in
// Default so the file and environment layers never clobber each other.
func Load() (*Config, error) {
	cfg := Default()

	if err := loadFile(paths.Config(paths.ConfigDir()), cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	cfg.applyDerived()
	return cfg, nil
}

// LoadOrDefault loads configuration or falls back to defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
		cfg.applyDerived()
	}
	return cfg
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8818",
			Host: "127.0.0.1",
		},
		Terminal: TerminalConfig{
			DefaultCols:     80,
			DefaultRows:     24,
			ReadyTimeout:    10 * time.Second,
			ExitGrace:       1500 * time.Millisecond,
			OutputBufferCap: 512,
		},
		Theme: ThemeConfig{
			Name:  "dark",
			Watch: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// loadFile overlays cfg with the TOML file at path. A missing file is
// not an error.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyDerived fills in values that depend on other settings.
func (c *Config) applyDerived() {
	if c.State.Dir == "" {
		c.State.Dir = paths.StateDir()
	}
	if c.Theme.Path == "" {
		c.Theme.Path = paths.Theme(paths.ConfigDir())
	}
	if c.Recording.Dir == "" {
		c.Recording.Dir = paths.Recordings(c.State.Dir)
	}
}
