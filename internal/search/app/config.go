package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile  string // Required: path to the SQLite database file
	SessionSecret string // Required: HMAC secret for session tokens

	PageSize        int           // Optional: search results per page (default: 30)
	WeatherAPIKey   string        // Optional: OpenWeatherMap key; weather endpoint is 503 without it
	WeatherCity     string        // Optional: city for weather lookups (default: Copenhagen)
	WeatherCacheTTL time.Duration // Optional: how long a weather report is served from cache (default: 10m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:  getEnvOrDefault("PAGEFINDER_DATABASE_FILE", "pagefinder.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		PageSize:        getEnvIntOrDefault("PAGE_SIZE", 30),
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		WeatherCity:     getEnvOrDefault("WEATHER_CITY", "Copenhagen"),
		WeatherCacheTTL: getEnvDurationOrDefault("WEATHER_CACHE_TTL", 10*time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
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

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
