package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the server's runtime configuration, read from the environment
type Config struct {
	Port     int
	LogLevel slog.Level

	StorageType string
	RedisURL    string
	DatabaseURL string
	// RunMigrations applies pending postgres migrations at startup
	RunMigrations bool

	JWTSecret string
	JWTIssuer string

	// RedisStreamEnabled appends game updates to a Redis stream
	RedisStreamEnabled bool
	KafkaBrokers       []string
	KafkaTopic         string

	CORSOrigins []string
}

// Load reads a .env file if one exists, then the process environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:          8080,
		LogLevel:      slog.LevelInfo,
		StorageType:   StorageMemory,
		RedisURL:      getenv("REDIS_URL"),
		DatabaseURL:   getenv("DATABASE_URL"),
		RunMigrations: true,
		JWTSecret:     getenv("JWT_SECRET"),
		JWTIssuer:     getenv("JWT_ISSUER"),
		KafkaBrokers:  splitList(getenv("KAFKA_BROKERS")),
		KafkaTopic:    getenv("KAFKA_TOPIC"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS")),
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	if v := getenv("STORAGE_TYPE"); v != "" {
		cfg.StorageType = strings.ToLower(v)
	}
	switch cfg.StorageType {
	case StorageMemory:
	case StorageRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=%s", StorageRedis)
		}
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=%s", StoragePostgres)
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", cfg.StorageType)
	}

	var err error
	if cfg.RunMigrations, err = parseBool(getenv, "RUN_MIGRATIONS", true); err != nil {
		return nil, err
	}
	if cfg.RedisStreamEnabled, err = parseBool(getenv, "REDIS_STREAM_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.RedisStreamEnabled && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL required when REDIS_STREAM_ENABLED is set")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func parseBool(getenv func(string) string, key string, fallback bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
