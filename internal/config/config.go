// Package config centralizes environment-driven configuration. A .env file is
// honored when present; every value has a development-safe default except the
// credentials for third-party providers, which stay empty and disable the
// corresponding feature at boot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at boot.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	DatabaseURL string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AWSRegion  string
	AWSBucket  string
	CDNBaseURL string

	PriceAPIBaseURL string
	PriceAPIKey     string
	PriceCacheTTL   time.Duration

	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	CleanupInterval time.Duration
	GuestRetention  time.Duration

	CORSOrigins []string
}

// Load reads configuration from the environment, loading .env first if one
// exists. Missing .env is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvOrDefault("PORT", "3001"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", "server.log"),

		DatabaseURL: databaseURL(),

		RedisHost:     getEnvOrDefault("REDIS_HOST", ""),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion:  os.Getenv("AWS_REGION"),
		AWSBucket:  os.Getenv("AWS_BUCKET"),
		CDNBaseURL: getEnvOrDefault("CDN_BASE_URL", "https://cdn.peerwave.app"),

		PriceAPIBaseURL: getEnvOrDefault("PRICE_API_BASE_URL", "https://api.coingecko.com/api/v3"),
		PriceAPIKey:     os.Getenv("PRICE_API_KEY"),
		PriceCacheTTL:   getEnvDuration("PRICE_CACHE_TTL", 5*time.Minute),

		AIBaseURL: getEnvOrDefault("AI_BASE_URL", "https://api.openai.com/v1"),
		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   getEnvOrDefault("AI_MODEL", "gpt-3.5-turbo"),

		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 6*time.Hour),
		GuestRetention:  getEnvDuration("GUEST_RETENTION", 24*time.Hour),

		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

// databaseURL prefers DATABASE_URL and falls back to assembling a DSN from
// individual components.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := getEnvOrDefault("DB_NAME", "peerwave")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are treated as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
