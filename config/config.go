package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application.
type Config struct {
	DatabaseURL    string
	ServerPort     int
	LocalStorePath string
	SyncInterval   time.Duration

	// Cloudflare R2 (optional; crest uploads are disabled when unset).
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Configured reports whether every R2 credential is present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from the environment, optionally seeded from a
// .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	syncInterval := 30 * time.Second
	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		syncInterval, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL environment variable: %w", err)
		}
		if syncInterval <= 0 {
			return nil, fmt.Errorf("SYNC_INTERVAL must be positive, got %s", syncInterval)
		}
	}

	localStorePath := os.Getenv("LOCAL_STORE_PATH")
	if localStorePath == "" {
		localStorePath = "matchday-events.db"
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		LocalStorePath:    localStorePath,
		SyncInterval:      syncInterval,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	return cfg, nil
}
