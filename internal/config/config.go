package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string `validate:"required,numeric"`
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
		Environment  string
	}

	OpenWeather struct {
		// APIKey may be empty; the service then reports itself unavailable.
		APIKey       string
		BaseURL      string  `validate:"required,url"`
		GeoURL       string  `validate:"required,url"`
		RequestsPerS float64 `validate:"gt=0"`
		Burst        int     `validate:"gte=1"`
	}

	Geocoding struct {
		OpenMeteoURL string `validate:"omitempty,url"`
	}

	Forecast struct {
		HourlyLimit int `validate:"gte=1,lte=40"`
		DailyDays   int `validate:"gte=1,lte=5"`
	}

	Scheduler struct {
		FetchInterval  time.Duration `validate:"gt=0"`
		SessionIdleTTL time.Duration `validate:"gt=0"`
		DefaultCities  []string
	}

	Cache struct {
		Duration time.Duration
		MaxSize  int    `validate:"gte=1"`
		RedisURL string
	}

	CircuitBreaker struct {
		Threshold int `validate:"gte=1"`
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int           `validate:"gte=0"`
		Delay      time.Duration
		Multiplier float64       `validate:"gte=1"`
	}

	Client struct {
		Timeout time.Duration `validate:"gt=0"`
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.Server.Environment = getEnv("ENVIRONMENT", "development")

	// OpenWeatherMap configuration
	cfg.OpenWeather.APIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.OpenWeather.BaseURL = getEnv("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5")
	cfg.OpenWeather.GeoURL = getEnv("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0")
	cfg.OpenWeather.RequestsPerS = parseFloat(getEnv("OPENWEATHER_RPS", "10"))
	cfg.OpenWeather.Burst = parseInt(getEnv("OPENWEATHER_BURST", "5"))

	// Fallback geocoder, empty disables it
	cfg.Geocoding.OpenMeteoURL = getEnv("OPENMETEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")

	cfg.Forecast.HourlyLimit = parseInt(getEnv("HOURLY_LIMIT", "12"))
	cfg.Forecast.DailyDays = parseInt(getEnv("DAILY_DAYS", "5"))

	// Scheduler configuration
	cfg.Scheduler.FetchInterval = parseDuration(getEnv("FETCH_INTERVAL", "15m"))
	cfg.Scheduler.SessionIdleTTL = parseDuration(getEnv("SESSION_IDLE_TTL", "30m"))
	cfg.Scheduler.DefaultCities = splitList(getEnv("DEFAULT_CITIES", "London,Paris,Tokyo"))

	// Cache configuration
	cfg.Cache.Duration = parseDuration(getEnv("CACHE_DURATION", "10m"))
	cfg.Cache.MaxSize = parseInt(getEnv("MAX_CACHE_SIZE", "1000"))
	cfg.Cache.RedisURL = getEnv("REDIS_URL", "")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "3"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	cfg.Client.Timeout = parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "10s"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.OpenWeather.APIKey == "" {
		zap.L().Warn("OPENWEATHER_API_KEY is not set, weather lookups will report unavailable")
	}

	return cfg, nil
}

// Validate checks the struct tags of the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
