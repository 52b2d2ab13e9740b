package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	LogDirectory   string
	StaticDir      string
	HistoryDB      string        // Empty disables the prediction history
	RequestTimeout time.Duration // Upper bound for one call to the prediction service
	SessionTTL     time.Duration // Idle time after which a session is dropped
	SweepInterval  time.Duration
	MaxUploadMB    int64
	AdminToken     string // Required by the log routes when set; otherwise they are loopback-only
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// Missing .env is fine, the environment wins anyway.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnvAsInt("PORT", 8080),
		LogDirectory:   getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDir:      getEnv("STATIC_DIR", filepath.Join(".", "static")),
		HistoryDB:      getEnv("HISTORY_DB", ""),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SweepInterval:  getEnvAsDuration("SWEEP_INTERVAL", time.Minute),
		MaxUploadMB:    getEnvAsInt64("MAX_UPLOAD_MB", 10),
		AdminToken:     getEnv("ADMIN_TOKEN", ""),
	}
}

// MaxUploadBytes is the multipart parse limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
