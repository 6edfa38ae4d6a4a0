package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port         string // Dev backend listen port
	APIBaseURL   string // Chat API base URL
	RealtimeURL  string // Push channel websocket URL
	Version      string
	LogLevel     string
	StoragePath  string // SQLite file for durable chat state
	ChatTimeout  int    // Chat send timeout in seconds (replies may come from a slow model)
	HistoryLimit int    // Number of messages fetched when hydrating a conversation
	OpenAIKey    string // Optional, lets the dev backend answer with a real model
	NoFeesActive bool   // Store-wide handling fee waiver promotion
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:         getEnv("PORT", "5000"),
		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:5000"),
		RealtimeURL:  getEnv("REALTIME_URL", "ws://localhost:5000/ws"),
		Version:      getEnv("VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoragePath:  getEnv("STORAGE_PATH", defaultStoragePath()),
		ChatTimeout:  getEnvInt("CHAT_TIMEOUT", 45),  // Default 45 seconds for local AI models
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 50), // Default 50 messages per hydration fetch
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),    // Dev backend only
		NoFeesActive: getEnvBool("NO_FEES_ACTIVE", true),
	}

	return config
}

// defaultStoragePath picks a per-user location for the chat database
func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "zipto-chat.db"
	}
	return filepath.Join(dir, "zipto", "chat.db")
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a default fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	// Configure zerolog to output JSON without newlines
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Create logger with JSON output to stdout
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "zipto").
		Str("version", c.Version).
		Logger()

	// Set log level based on configuration
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
