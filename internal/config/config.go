// Package config loads shield server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultDBPath is where the database lives unless SHIELD_DB_PATH says otherwise.
const DefaultDBPath = "data/shield/shield.db"

// Config holds process settings. Flags on the binaries override these.
type Config struct {
	DBPath      string
	CatalogPath string // optional YAML/JSON catalog, replaces the stored one at startup
	CacheSize   int    // optimizer result cache entries, 0 disables caching
	LogLevel    string
	LogFormat   string
}

// Load reads .env from the working directory, if present, then the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads the given env files, skipping any that don't exist, then
// builds the config from the environment. Variables already set win over
// file values.
func LoadFrom(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cacheSize, err := getEnvInt("SHIELD_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:      getEnv("SHIELD_DB_PATH", DefaultDBPath),
		CatalogPath: os.Getenv("SHIELD_CATALOG_PATH"),
		CacheSize:   cacheSize,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if cfg.CacheSize < 0 || cfg.CacheSize > 100000 {
		return nil, fmt.Errorf("SHIELD_CACHE_SIZE must be between 0 and 100000, got %d", cfg.CacheSize)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
