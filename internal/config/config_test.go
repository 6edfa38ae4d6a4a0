package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	// Clear environment variables
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:5000/ws", cfg.RealtimeURL)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.StoragePath)
	assert.Equal(t, 45, cfg.ChatTimeout)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.True(t, cfg.NoFeesActive)
}

func TestLoad_CustomValues(t *testing.T) {
	// Set environment variables
	clearEnv(t)
	_ = os.Setenv("PORT", "9090")
	_ = os.Setenv("API_BASE_URL", "https://api.zipto.example")
	_ = os.Setenv("REALTIME_URL", "wss://rt.zipto.example/ws")
	_ = os.Setenv("VERSION", "2.0.0")
	_ = os.Setenv("LOG_LEVEL", "debug")
	_ = os.Setenv("STORAGE_PATH", "/tmp/zipto-test.db")
	_ = os.Setenv("CHAT_TIMEOUT", "120")
	_ = os.Setenv("HISTORY_LIMIT", "25")
	_ = os.Setenv("OPENAI_API_KEY", "test-key-123")
	_ = os.Setenv("NO_FEES_ACTIVE", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://api.zipto.example", cfg.APIBaseURL)
	assert.Equal(t, "wss://rt.zipto.example/ws", cfg.RealtimeURL)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/zipto-test.db", cfg.StoragePath)
	assert.Equal(t, 120, cfg.ChatTimeout)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, "test-key-123", cfg.OpenAIKey)
	assert.False(t, cfg.NoFeesActive)
}

func TestLoad_PartialCustomValues(t *testing.T) {
	clearEnv(t)
	_ = os.Setenv("PORT", "3000")
	_ = os.Setenv("CHAT_TIMEOUT", "30")

	cfg := Load()

	// Custom values
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 30, cfg.ChatTimeout)

	// Default values for unset variables
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, 50, cfg.HistoryLimit)
}

func TestLoad_InvalidNumericValues(t *testing.T) {
	clearEnv(t)
	_ = os.Setenv("CHAT_TIMEOUT", "not-a-number")
	_ = os.Setenv("HISTORY_LIMIT", "")
	_ = os.Setenv("NO_FEES_ACTIVE", "maybe")

	cfg := Load()

	// Invalid values fall back to defaults
	assert.Equal(t, 45, cfg.ChatTimeout)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.True(t, cfg.NoFeesActive)
}

func TestSetupLogger(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	logger := cfg.SetupLogger()

	// Should not panic and return a usable logger
	logger.Info().Msg("test message")
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	clearEnv(t)
	_ = os.Setenv("LOG_LEVEL", "bogus")

	cfg := Load()
	logger := cfg.SetupLogger()
	logger.Debug().Msg("should be filtered at default info level")
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT",
		"API_BASE_URL",
		"REALTIME_URL",
		"VERSION",
		"LOG_LEVEL",
		"STORAGE_PATH",
		"CHAT_TIMEOUT",
		"HISTORY_LIMIT",
		"OPENAI_API_KEY",
		"NO_FEES_ACTIVE",
	} {
		_ = os.Unsetenv(key)
	}
}
