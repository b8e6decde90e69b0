package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Storage backends
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	DatabaseDriver string // "sqlite" (default) or "postgres"
	DatabaseURL    string // postgres connection string
	SQLitePath     string
	TablePrefix    string
	// Auth (optional: empty disables JWT verification)
	JWKSURL string
	// Logging
	LogDir      string
	MaxLogFiles int
	// TagPalette overrides the embedded palette when non-empty
	TagPalette []string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DatabaseDriver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", DefaultSQLitePath()),
		TablePrefix:    getTablePrefix(env),
		JWKSURL:        getEnv("AUTH_JWKS_URL", ""),
		LogDir:         getEnv("LOG_DIR", ""),
		MaxLogFiles:    10,
		TagPalette:     SplitList(getEnv("TAG_PALETTE", "")),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// DefaultSQLitePath returns the per-user database location
func DefaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "winwork.db"
	}
	return filepath.Join(dir, "winwork", "winwork.db")
}

// SplitList splits a comma-separated value, dropping empty entries
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
