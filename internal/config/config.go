// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	LogLevel    string
	CORSOrigins []string

	// LLM settings.
	OpenAIAPIKey    string
	Model           string
	ExtractionModel string

	// Travel provider settings.
	SerpAPIKey         string
	GooglePlacesAPIKey string

	// Store settings. RedisAddr selects the Redis backend; when empty the
	// service falls back to the embedded SQLite store at DBPath.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DBPath        string

	SessionTTL  time.Duration
	HistoryKeep int

	// Per-call timeouts. A timeout is that call's failure, never fatal for
	// the turn.
	ExtractTimeout    time.Duration
	ProviderTimeout   time.Duration
	CompletionTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		Model:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ExtractionModel: getEnv("OPENAI_EXTRACTION_MODEL", "gpt-4o-mini"),

		SerpAPIKey:         getEnv("SERPAPI_KEY", ""),
		GooglePlacesAPIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		DBPath:        getEnv("DB_PATH", "./data/sessions.db"),

		SessionTTL:  getEnvDuration("SESSION_TTL", 30*time.Minute),
		HistoryKeep: getEnvInt("HISTORY_KEEP", 10),

		ExtractTimeout:    getEnvDuration("EXTRACT_TIMEOUT", 15*time.Second),
		ProviderTimeout:   getEnvDuration("PROVIDER_TIMEOUT", 20*time.Second),
		CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.RedisAddr == "" && c.DBPath == "" {
		return fmt.Errorf("one of REDIS_ADDR or DB_PATH must be set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.HistoryKeep <= 0 {
		return fmt.Errorf("HISTORY_KEEP must be > 0")
	}
	return nil
}

// UseRedis reports whether the Redis session store backend is selected.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
