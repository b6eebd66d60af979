package configs

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Market   MarketConfig
	Telegram TelegramConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	OpsPort string
	Env     string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// MarketConfig holds market feed and watcher configuration
type MarketConfig struct {
	FeedSeconds        int
	EngineSeconds      int
	HistoryLimit       int
	SharpMoveThreshold float64
}

// TelegramConfig holds notification configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			OpsPort: getEnv("OPS_PORT", "8081"),
			Env:     getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Market: MarketConfig{
			FeedSeconds:        getEnvInt("FEED_INTERVAL_SECONDS", 30),
			EngineSeconds:      getEnvInt("ENGINE_INTERVAL_SECONDS", 30),
			HistoryLimit:       getEnvInt("MARKET_HISTORY_LIMIT", 1000),
			SharpMoveThreshold: getEnvFloat("SHARP_MOVE_THRESHOLD_PCT", 10.0),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
