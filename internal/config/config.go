package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the API server configuration
type Config struct {
	Port             string
	Environment      string
	DatabaseURL      string
	JWTSecret        []byte
	FetchTimeout     time.Duration
	SessionRetention time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	cfg := &Config{
		Port:             "8080",
		Environment:      "development",
		DatabaseURL:      "./data/vidgrab.db",
		JWTSecret:        []byte("change-this-in-production"),
		FetchTimeout:     30 * time.Second,
		SessionRetention: time.Hour,
	}

	if port := os.Getenv("API_PORT"); port != "" {
		cfg.Port = port
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWTSecret = []byte(jwtSecret)
	}

	if timeout := os.Getenv("FETCH_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.FetchTimeout = time.Duration(seconds) * time.Second
		}
	}

	if retention := os.Getenv("SESSION_RETENTION_MINUTES"); retention != "" {
		if minutes, err := strconv.Atoi(retention); err == nil && minutes > 0 {
			cfg.SessionRetention = time.Duration(minutes) * time.Minute
		}
	}

	return cfg
}
