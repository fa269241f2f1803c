package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	fileName        = "config.toml"
	projectFileName = "dragdo.toml"
	appDirName      = ".dragdo"
	logFileName     = "dragdo.log"
)

// Load builds the configuration from defaults, config files and the
// environment. If path is non-empty only that file is read, and it must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// 1. Defaults
	setDefaults(cfg)

	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else {
		// 2. User config file
		if p := findUserConfigFile(); p != "" {
			if err := loadConfigFile(cfg, p); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", p, err)
			}
		}
		// 3. Project config file (overrides user config)
		if p := findProjectConfigFile(); p != "" {
			if err := loadConfigFile(cfg, p); err != nil {
				return nil, fmt.Errorf("loading project config file %s: %w", p, err)
			}
		}
	}

	// 4. Environment
	loadFromEnv(cfg)

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func finalizeConfig(cfg *Config) error {
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)
	if cfg.Log.File == "" && cfg.Cache.Dir != "" {
		cfg.Log.File = defaultLogFile(cfg.Cache.Dir)
		cfg.logFileDerived = true
	}
	return cfg.Validate()
}

func findUserConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, appDirName, fileName)
		if fileExists(p) {
			return p
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "dragdo", fileName)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{projectFileName, "." + projectFileName} {
		if fileExists(name) {
			return name
		}
	}
	return ""
}

func defaultLogFile(cacheDir string) string {
	return filepath.Join(cacheDir, logFileName)
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, appDirName)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
