package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("DEFAULT_CITIES", " Paris, ,Tokyo ")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.OpenWeather.APIKey)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeather.BaseURL)
	assert.Equal(t, 12, cfg.Forecast.HourlyLimit)
	assert.Equal(t, 5, cfg.Forecast.DailyDays)
	assert.Equal(t, []string{"Paris", "Tokyo"}, cfg.Scheduler.DefaultCities)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Duration)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("FIBER_PORT", "9090")
	t.Setenv("HOURLY_LIMIT", "24")
	t.Setenv("RETRY_DELAY", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.OpenWeather.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24, cfg.Forecast.HourlyLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("DAILY_DAYS", "9")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DailyDays")
}
