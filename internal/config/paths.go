package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "linedex"

// ConfigDir returns the XDG configuration directory.
// Uses $XDG_CONFIG_HOME/linedex or ~/.config/linedex on Unix and
// ~/Library/Application Support/linedex on macOS.
func ConfigDir() (string, error) {
	if homeOverride := os.Getenv("LINEDEX_HOME"); homeOverride != "" {
		return filepath.Join(homeOverride, "config"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", appName), nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}

	return filepath.Join(home, ".config", appName), nil
}

// DataDir returns the XDG data directory, where the default index lives.
func DataDir() (string, error) {
	if homeOverride := os.Getenv("LINEDEX_HOME"); homeOverride != "" {
		return filepath.Join(homeOverride, "data"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", appName), nil
	}

	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}

	return filepath.Join(home, ".local", "share", appName), nil
}

// FilePath returns the configuration file location; LINEDEX_CONFIG wins.
func FilePath() (string, error) {
	if path := os.Getenv("LINEDEX_CONFIG"); path != "" {
		return path, nil
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// ResolveDatabasePath converts a database name, path or DSN into what the
// store should open. Empty or "default" yields the configured path; bare
// names without an extension land in the data directory as <name>.db;
// postgres DSNs pass through untouched.
func (cfg *Config) ResolveDatabasePath(nameOrPath string) (string, error) {
	if nameOrPath == "" || nameOrPath == "default" {
		return cfg.Database.Path, nil
	}

	if IsDSN(nameOrPath) || filepath.IsAbs(nameOrPath) {
		return nameOrPath, nil
	}

	if strings.ContainsRune(nameOrPath, os.PathSeparator) || filepath.Ext(nameOrPath) != "" {
		return filepath.Abs(nameOrPath)
	}

	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, nameOrPath+".db"), nil
}

// IsDSN reports whether s looks like a connection string rather than a file.
func IsDSN(s string) bool {
	return strings.Contains(s, "://") || strings.Contains(s, "host=") || strings.Contains(s, "dbname=")
}
