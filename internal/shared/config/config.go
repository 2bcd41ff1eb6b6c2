package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Storage backends selectable with STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds every setting read from the environment (and .env, when present).
type Config struct {
	AppEnv            string
	LogLevel          string
	HTTPAddr          string
	Storage           string
	PriceTickInterval time.Duration
	DB                DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the postgres connection URL used by both pgx and migrate.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads .env if it exists and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		HTTPAddr: getEnv("HTTP_ADDR", ":9000"),
		Storage:  strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "dutch_auction"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	tick, err := time.ParseDuration(getEnv("PRICE_TICK_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PRICE_TICK_INTERVAL: %w", err)
	}
	if tick <= 0 {
		return Config{}, fmt.Errorf("PRICE_TICK_INTERVAL must be positive, got %s", tick)
	}
	cfg.PriceTickInterval = tick

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return Config{}, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.IsProduction() && cfg.Storage == StorageMemory {
		return Config{}, fmt.Errorf("STORAGE=%s is not allowed in production", StorageMemory)
	}

	if cfg.LogLevel != "" {
		if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
