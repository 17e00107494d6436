package config

import "path/filepath"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", Path: defaultDatabasePath()},
		Index: IndexConfig{
			Masks: []string{"*.txt", "*.log", "*.csv"}, Encoding: "UTF-8",
		},
		Search: SearchConfig{DefaultLimit: 0},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Log:    LogConfig{Level: "info"},
	}
}

func defaultDatabasePath() string {
	dataDir, err := DataDir()
	if err != nil {
		return "index.db"
	}
	return filepath.Join(dataDir, "index.db")
}
