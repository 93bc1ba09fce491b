package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BotToken string // Required: Telegram bot token

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./watch.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	Stage2Delay    time.Duration // Optional: gap between first and second reminder (default: 1h)
	EmergencyDelay time.Duration // Optional: gap between second reminder and contact alert (default: 1h)
}

func LoadConfig() Config {
	return Config{
		BotToken: os.Getenv("BOT_TOKEN"),

		DatabaseFile:        getEnvOrDefault("WATCH_DATABASE_FILE", "watch.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		Stage2Delay:    getEnvDurationOrDefault("STAGE2_DELAY", 1*time.Hour),
		EmergencyDelay: getEnvDurationOrDefault("EMERGENCY_DELAY", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
