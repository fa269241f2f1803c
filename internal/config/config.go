package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL    = "https://jsonbox.io"
	DefaultCache      = "file"
	DefaultDebounceMS = 1000
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultTheme      = "classic"
)

// Config is the full dragdo configuration.
type Config struct {
	Remote RemoteConfig `toml:"remote"`
	Cache  CacheConfig  `toml:"cache"`
	Save   SaveConfig   `toml:"save"`
	Log    LogConfig    `toml:"log"`
	UI     UIConfig     `toml:"ui"`

	// Files lists the config files that were read, lowest priority first.
	Files []string `toml:"-"`

	// logFileDerived is set when Log.File was filled in from Cache.Dir, so
	// a later cache dir override moves the log with it.
	logFileDerived bool
}

type RemoteConfig struct {
	BaseURL  string `toml:"base_url"`
	BoxID    string `toml:"box_id"`
	RecordID string `toml:"record_id"`
	// TimeoutSeconds bounds each HTTP request; 0 means no timeout.
	TimeoutSeconds int  `toml:"timeout_seconds"`
	Offline        bool `toml:"offline"`
}

type CacheConfig struct {
	Backend string `toml:"backend"` // file | sqlite | memory
	Dir     string `toml:"dir"`
	// Fallback loads the cached list when the remote cannot be read.
	Fallback bool `toml:"fallback"`
}

type SaveConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json | logfmt
	// File receives TUI logs; defaults to <cache dir>/dragdo.log.
	File string `toml:"file"`
}

type UIConfig struct {
	Theme string `toml:"theme"` // classic | neon | mono
}

func setDefaults(cfg *Config) {
	cfg.Remote.BaseURL = DefaultBaseURL
	cfg.Cache.Backend = DefaultCache
	cfg.Cache.Dir = defaultCacheDir()
	cfg.Save.DebounceMS = DefaultDebounceMS
	cfg.Log.Level = DefaultLogLevel
	cfg.Log.Format = DefaultLogFormat
	cfg.UI.Theme = DefaultTheme
}

// Debounce returns the save quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Save.DebounceMS) * time.Millisecond
}

// Timeout returns the HTTP request timeout, zero for none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// Offline reports whether the remote store is unused, either by request or
// because no record is configured.
func (c *Config) Offline() bool {
	return c.Remote.Offline || strings.TrimSpace(c.Remote.BoxID) == "" || strings.TrimSpace(c.Remote.RecordID) == ""
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Save.DebounceMS <= 0 {
		return fmt.Errorf("save.debounce_ms: must be > 0, got %d", c.Save.DebounceMS)
	}
	if c.Remote.TimeoutSeconds < 0 {
		return fmt.Errorf("remote.timeout_seconds: must be >= 0, got %d", c.Remote.TimeoutSeconds)
	}
	return nil
}

// Write renders the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
