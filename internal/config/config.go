package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Port        string
	Store       string // "memory" or "postgres"
	DatabaseURL string

	KafkaBrokers []string // empty means events are only logged
	KafkaTopic   string

	RedisAddr     string // empty disables the price cache
	PriceAPIURL   string
	PriceTimeout  time.Duration
	PriceCacheTTL time.Duration

	PolicyFile string
	Env        string
}

// LoadConfig reads .env if present, then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on System Env Variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Store:         strings.ToLower(getEnv("STORE", StoreMemory)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "ledger_events"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		PriceAPIURL:   getEnv("PRICE_API_URL", "https://api.coinbase.com"),
		PriceTimeout:  getDuration("PRICE_TIMEOUT", 5*time.Second),
		PriceCacheTTL: getDuration("PRICE_CACHE_TTL", 30*time.Second),
		PolicyFile:    getEnv("POLICY_FILE", ""),
		Env:           getEnv("ENV", "development"),
	}
}

// Validate checks the combinations LoadConfig cannot default away.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("STORE=postgres needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StoreMemory, StorePostgres)
	}
	if c.PriceTimeout <= 0 {
		return fmt.Errorf("PRICE_TIMEOUT must be positive, got %s", c.PriceTimeout)
	}
	return nil
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
