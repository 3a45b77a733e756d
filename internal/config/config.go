package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database configuration
	DBType            string // sqlite, postgres, mysql, sqlserver
	DBPath            string // sqlite file; empty means the per-user default
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Logging
	LogLevel string

	// FatSecret platform API
	FatSecretClientID     string
	FatSecretClientSecret string
	FatSecretScope        string
	FatSecretTokenURL     string
	FatSecretBaseURL      string
	LookupTimeout         time.Duration
	SearchCacheTTL        time.Duration
}

var ErrMissingCredentials = errors.New("FatSecret credentials are not configured")

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(getEnv("NUTRILINK_ENV_FILE", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		DBType:                strings.ToLower(getEnv("NUTRILINK_DB_TYPE", "sqlite")),
		DBPath:                getEnv("NUTRILINK_DB_PATH", ""),
		DBHost:                getEnv("NUTRILINK_DB_HOST", "localhost"),
		DBPort:                getEnv("NUTRILINK_DB_PORT", ""),
		DBName:                getEnv("NUTRILINK_DB_NAME", "nutrilink"),
		DBUser:                getEnv("NUTRILINK_DB_USER", ""),
		DBPassword:            getEnv("NUTRILINK_DB_PASSWORD", ""),
		DBConnectionLimit:     getEnvAsInt("NUTRILINK_DB_CONNECTION_LIMIT", 5),
		LogLevel:              getEnv("NUTRILINK_LOG_LEVEL", "warn"),
		FatSecretClientID:     getEnv("FATSECRET_CLIENT_ID", ""),
		FatSecretClientSecret: getEnv("FATSECRET_CLIENT_SECRET", ""),
		FatSecretScope:        getEnv("FATSECRET_SCOPE", ""),
		FatSecretTokenURL:     getEnv("FATSECRET_TOKEN_URL", ""),
		FatSecretBaseURL:      getEnv("FATSECRET_BASE_URL", ""),
		LookupTimeout:         time.Duration(getEnvAsInt("NUTRILINK_LOOKUP_TIMEOUT_SECONDS", 15)) * time.Second,
		SearchCacheTTL:        time.Duration(getEnvAsInt("NUTRILINK_SEARCH_CACHE_TTL_HOURS", 24)) * time.Hour,
	}

	switch cfg.DBType {
	case "sqlite":
	case "postgres", "postgresql", "mysql", "mariadb", "sqlserver", "mssql":
		if cfg.DBUser == "" {
			return nil, fmt.Errorf("NUTRILINK_DB_USER is required for %s", cfg.DBType)
		}
	default:
		return nil, fmt.Errorf("unsupported NUTRILINK_DB_TYPE %q", cfg.DBType)
	}
	if cfg.DBPort == "" {
		cfg.DBPort = defaultPort(cfg.DBType)
	}

	return cfg, nil
}

// RequireFatSecret reports whether food search can authenticate.
func (c *Config) RequireFatSecret() error {
	if strings.TrimSpace(c.FatSecretClientID) == "" || strings.TrimSpace(c.FatSecretClientSecret) == "" {
		return fmt.Errorf("%w: set FATSECRET_CLIENT_ID and FATSECRET_CLIENT_SECRET", ErrMissingCredentials)
	}
	return nil
}

func defaultPort(dbType string) string {
	switch dbType {
	case "postgres", "postgresql":
		return "5432"
	case "mysql", "mariadb":
		return "3306"
	case "sqlserver", "mssql":
		return "1433"
	}
	return ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
