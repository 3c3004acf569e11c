// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration resolved from .env files and
// environment variables. The persisted project settings live in Store.
type Config struct {
	APIURL          string
	ConfigPath      string
	SessionPath     string
	DatabasePath    string
	RefreshInterval time.Duration
}

// Default values
const (
	defaultAPIURL          = "https://api.agentcost.dev"
	defaultRefreshInterval = 30 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIURL:          getEnvString("AGENTCOST_API_URL", defaultAPIURL),
		ConfigPath:      getEnvString("AGENTCOST_CONFIG_PATH", defaultConfigPath()),
		SessionPath:     getEnvString("AGENTCOST_SESSION_PATH", defaultSessionPath()),
		DatabasePath:    getEnvString("DATABASE_PATH", defaultDatabasePath()),
		RefreshInterval: getEnvDuration("AGENTCOST_REFRESH_INTERVAL", defaultRefreshInterval),
	}

	for _, p := range []string{cfg.ConfigPath, cfg.SessionPath, cfg.DatabasePath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "agentcost", ".env"),
			filepath.Join(home, ".agentcost", ".env"),
		)
	}

	return paths
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "agentcost")
}

// defaultConfigPath returns the default path for the project config file.
func defaultConfigPath() string {
	return filepath.Join(configDir(), "agentcost_config.json")
}

// defaultSessionPath returns the default path for the persisted session file.
func defaultSessionPath() string {
	return filepath.Join(configDir(), "session.json")
}

// defaultDatabasePath returns the default path for the SQLite cache.
func defaultDatabasePath() string {
	return filepath.Join(configDir(), "cache.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
