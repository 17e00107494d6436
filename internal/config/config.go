package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Index    IndexConfig    `toml:"index"`
	Search   SearchConfig   `toml:"search"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `toml:"driver"` // sqlite, sqlite3 or postgres
	Path   string `toml:"path"`   // File path for SQLite, DSN for postgres
}

// IndexConfig holds scan defaults.
type IndexConfig struct {
	Masks        []string `toml:"masks"`
	Encoding     string   `toml:"encoding"`
	CorrectDrift bool     `toml:"correct_drift"` // Subtract the previous posting on re-scan
}

type SearchConfig struct {
	DefaultLimit  int  `toml:"default_limit"` // 0 means unlimited
	CaseSensitive bool `toml:"case_sensitive"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Load reads the configuration from the XDG config path or uses defaults.
func Load() (*Config, error) {
	configPath, err := FilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration at path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the XDG config path.
func (cfg *Config) Save() error {
	configPath, err := FilePath()
	if err != nil {
		return err
	}
	return cfg.SaveTo(configPath)
}

func (cfg *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Keys lists the dotted keys understood by Get and Set.
func Keys() []string {
	return []string{
		"database.driver",
		"database.path",
		"index.masks",
		"index.encoding",
		"index.correct_drift",
		"search.default_limit",
		"search.case_sensitive",
		"server.addr",
		"log.level",
	}
}

// Get renders the value stored under a dotted key.
func (cfg *Config) Get(key string) (string, error) {
	switch key {
	case "database.driver":
		return cfg.Database.Driver, nil
	case "database.path":
		return cfg.Database.Path, nil
	case "index.masks":
		return strings.Join(cfg.Index.Masks, ","), nil
	case "index.encoding":
		return cfg.Index.Encoding, nil
	case "index.correct_drift":
		return strconv.FormatBool(cfg.Index.CorrectDrift), nil
	case "search.default_limit":
		return strconv.Itoa(cfg.Search.DefaultLimit), nil
	case "search.case_sensitive":
		return strconv.FormatBool(cfg.Search.CaseSensitive), nil
	case "server.addr":
		return cfg.Server.Addr, nil
	case "log.level":
		return cfg.Log.Level, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set parses value and stores it under a dotted key. Masks are
// comma-separated.
func (cfg *Config) Set(key, value string) error {
	switch key {
	case "database.driver":
		cfg.Database.Driver = value
	case "database.path":
		cfg.Database.Path = value
	case "index.masks":
		var masks []string
		for m := range strings.SplitSeq(value, ",") {
			if m = strings.TrimSpace(m); m != "" {
				if _, err := filepath.Match(m, ""); err != nil {
					return fmt.Errorf("invalid mask %q: %w", m, err)
				}
				masks = append(masks, m)
			}
		}
		cfg.Index.Masks = masks
	case "index.encoding":
		cfg.Index.Encoding = value
	case "index.correct_drift":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s (use true/false)", value)
		}
		cfg.Index.CorrectDrift = b
	case "search.default_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid limit: %s", value)
		}
		cfg.Search.DefaultLimit = n
	case "search.case_sensitive":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s (use true/false)", value)
		}
		cfg.Search.CaseSensitive = b
	case "server.addr":
		cfg.Server.Addr = value
	case "log.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			cfg.Log.Level = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log level: %s", value)
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
