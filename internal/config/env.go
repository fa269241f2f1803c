package config

import (
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from DRAGDO_* environment variables.
// Unparseable numbers and booleans are ignored.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DRAGDO_BASE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("DRAGDO_BOX"); v != "" {
		cfg.Remote.BoxID = v
	}
	if v := os.Getenv("DRAGDO_RECORD"); v != "" {
		cfg.Remote.RecordID = v
	}
	if v, ok := envInt("DRAGDO_TIMEOUT_SECONDS"); ok {
		cfg.Remote.TimeoutSeconds = v
	}
	if v, ok := envBool("DRAGDO_OFFLINE"); ok {
		cfg.Remote.Offline = v
	}
	if v := os.Getenv("DRAGDO_CACHE"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("DRAGDO_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v, ok := envBool("DRAGDO_CACHE_FALLBACK"); ok {
		cfg.Cache.Fallback = v
	}
	if v, ok := envInt("DRAGDO_DEBOUNCE_MS"); ok {
		cfg.Save.DebounceMS = v
	}
	if v := os.Getenv("DRAGDO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DRAGDO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DRAGDO_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("DRAGDO_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
