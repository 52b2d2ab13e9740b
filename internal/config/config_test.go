package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_DIR", "HISTORY_DB", "REQUEST_TIMEOUT", "SESSION_TTL", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.HistoryDB)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HISTORY_DB", "/tmp/history.db")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_MB", "2")

	cfg := Load()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "abc"},
		{"PORT", "12.5"},
		{"REQUEST_TIMEOUT", "soon"},
		{"REQUEST_TIMEOUT", "-3s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			assert.Equal(t, 8080, getEnvAsInt("PORT", 8080))
			assert.Equal(t, time.Second, getEnvAsDuration("REQUEST_TIMEOUT", time.Second))
		})
	}
}
