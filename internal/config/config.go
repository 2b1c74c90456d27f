package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the attrition dashboard server.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Redis  RedisConfig
	Cache  CacheConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// StoreConfig selects and configures the table backend. Exactly one of the
// sub-configs is consulted, per Backend.
type StoreConfig struct {
	Backend  string // csv, sheets, or postgres
	CSV      CSVConfig
	Sheets   SheetsConfig
	Postgres PostgresConfig
}

type CSVConfig struct {
	Path string
}

type SheetsConfig struct {
	BaseURL       string
	SpreadsheetID string
	Range         string
	Token         string
	Timeout       time.Duration
}

type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL string
}

type CacheConfig struct {
	TableTTL time.Duration
}

type AuthConfig struct {
	// KeyHashes are bcrypt hashes of accepted API keys.
	KeyHashes         []string
	RequestsPerMinute int
}

var validBackends = map[string]bool{
	"csv":      true,
	"sheets":   true,
	"postgres": true,
}

// Load reads configuration from environment variables and returns a
// validated Config. Returns an error with a descriptive message if any
// required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("DASHBOARD_PORT", 8080),
			Env:  envString("DASHBOARD_ENV", "development"),
		},
		Store: StoreConfig{
			Backend: envString("STORE_BACKEND", "csv"),
			CSV: CSVConfig{
				Path: envString("CSV_PATH", "attrition_tracking.csv"),
			},
			Sheets: SheetsConfig{
				BaseURL:       envString("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
				SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
				Range:         envString("SHEETS_RANGE", "Tracking!A:Z"),
				Token:         os.Getenv("SHEETS_TOKEN"),
				Timeout:       envDuration("SHEETS_TIMEOUT", 30*time.Second),
			},
			Postgres: PostgresConfig{
				URL:             os.Getenv("DATABASE_URL"),
				MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
				MigrationsDir:   envString("DATABASE_MIGRATIONS_DIR", "migrations"),
			},
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Cache: CacheConfig{
			TableTTL: envDuration("TABLE_CACHE_TTL", 30*time.Second),
		},
		Auth: AuthConfig{
			KeyHashes:         envList("API_KEY_HASHES"),
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MIN", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("STORE_BACKEND must be one of csv, sheets, postgres; got %q", c.Store.Backend)
	}

	switch c.Store.Backend {
	case "csv":
		if c.Store.CSV.Path == "" {
			return fmt.Errorf("CSV_PATH is required when STORE_BACKEND is csv")
		}
	case "sheets":
		if c.Store.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required when STORE_BACKEND is sheets")
		}
		if !strings.HasPrefix(c.Store.Sheets.BaseURL, "http://") && !strings.HasPrefix(c.Store.Sheets.BaseURL, "https://") {
			return fmt.Errorf("SHEETS_BASE_URL must start with http:// or https://, got %q", c.Store.Sheets.BaseURL)
		}
	case "postgres":
		if c.Store.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
	}

	if len(c.Auth.KeyHashes) == 0 {
		return fmt.Errorf("API_KEY_HASHES is required")
	}

	if c.Cache.TableTTL <= 0 {
		return fmt.Errorf("TABLE_CACHE_TTL must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
