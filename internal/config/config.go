package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// DialogueBaseURL is the base address of the dialogue backend
	// (the service behind /api/chat).
	DialogueBaseURL string
	// BillingBaseURL is the base address of the debt/boleto endpoints.
	// Defaults to DialogueBaseURL, which is how the original deployment runs.
	BillingBaseURL string

	// DatabaseURL enables the Postgres transcript log when set.
	DatabaseURL string

	AllowedOrigin  string
	RequestTimeout time.Duration

	// Per-session rate limit on mutating widget endpoints.
	SessionRate  float64
	SessionBurst int
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnvDefault("PORT", "8080"),
		DialogueBaseURL: getEnvDefault("DIALOGUE_BACKEND_URL", "http://localhost:8001"),
		BillingBaseURL:  os.Getenv("BILLING_BACKEND_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AllowedOrigin:   getEnvDefault("ALLOWED_ORIGIN", "*"),
		RequestTimeout:  time.Duration(getEnvIntDefault("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		SessionRate:     getEnvFloatDefault("SESSION_RATE_PER_SECOND", 2),
		SessionBurst:    getEnvIntDefault("SESSION_RATE_BURST", 5),
	}

	if cfg.BillingBaseURL == "" {
		cfg.BillingBaseURL = cfg.DialogueBaseURL
	}

	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloatDefault(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
