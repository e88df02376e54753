// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the server.
type Config struct {
	// Port the HTTP server listens on.
	Port string
	// DBPath is the sqlite database file path.
	DBPath string
	// StaticDir holds the frontend pages served at /.
	StaticDir string

	// SessionTTL is the absolute session lifetime.
	SessionTTL time.Duration
	// SecureCookie marks session cookies Secure (set behind TLS).
	SecureCookie bool

	// QueryTimeout bounds every storage call.
	QueryTimeout time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CORSAllowedOrigins for the browser frontend; credentials are allowed.
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	return &Config{
		Port:               getEnv("PORT", "3000"),
		DBPath:             getEnv("DB_PATH", "finance.db"),
		StaticDir:          getEnv("STATIC_DIR", "web/static"),
		SessionTTL:         getDurationEnv("SESSION_TTL", 24*time.Hour),
		SecureCookie:       getBoolEnv("SECURE_COOKIE", false),
		QueryTimeout:       getDurationEnv("DB_QUERY_TIMEOUT", 5*time.Second),
		ReadTimeout:        getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:       getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:        getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout:    getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		CORSAllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getSliceEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
