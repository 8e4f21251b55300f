package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/bobby-s-dev/weather-app/internal/units"
	"go.uber.org/zap"
)

const (
	DefaultOpenWeatherURL    = "https://api.openweathermap.org/data/2.5"
	DefaultOpenWeatherGeoURL = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherClient talks to OpenWeatherMap. Every endpoint has its own circuit
// breaker so an advisory endpoint tripping cannot block current/forecast calls;
// all of them share one rate limiter.
type OpenWeatherClient struct {
	current  *BaseClient
	forecast *BaseClient
	uvi      *BaseClient
	air      *BaseClient
	geo      *BaseClient
	apiKey   string
	baseURL  string
	geoURL   string
	logger   *zap.Logger
}

type openWeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type OpenWeatherCurrentResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []openWeatherCondition `json:"weather"`
	Main    *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility *int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Cod      int    `json:"cod"`
}

type OpenWeatherForecastResponse struct {
	Cod     string `json:"cod"`
	Message int    `json:"message"`
	Cnt     int    `json:"cnt"`
	List    []struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Pressure  float64 `json:"pressure"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Weather []openWeatherCondition `json:"weather"`
		Clouds  struct {
			All int `json:"all"`
		} `json:"clouds"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
			Gust  float64 `json:"gust"`
		} `json:"wind"`
		Visibility *int    `json:"visibility"`
		Pop        float64 `json:"pop"`
		DtTxt      string  `json:"dt_txt"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
		Sunrise  int64  `json:"sunrise"`
		Sunset   int64  `json:"sunset"`
	} `json:"city"`
}

type OpenWeatherUVResponse struct {
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Value *float64 `json:"value"`
}

type OpenWeatherAirResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

type OpenWeatherGeoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func NewOpenWeatherClient(apiKey string, baseURL, geoURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if geoURL == "" {
		geoURL = DefaultOpenWeatherGeoURL
	}
	if config.Limiter == nil {
		config.Limiter = NewRateLimiter(config.RequestsPerSecond, config.Burst)
	}

	return &OpenWeatherClient{
		current:  NewBaseClient("openweather-current", config, logger),
		forecast: NewBaseClient("openweather-forecast", config, logger),
		uvi:      NewBaseClient("openweather-uvi", config, logger),
		air:      NewBaseClient("openweather-air", config, logger),
		geo:      NewBaseClient("openweather-geo", config, logger),
		apiKey:   apiKey,
		baseURL:  baseURL,
		geoURL:   geoURL,
		logger:   logger,
	}
}

func (c *OpenWeatherClient) Name() string {
	return "openweathermap"
}

// Available reports whether an API key is configured.
func (c *OpenWeatherClient) Available() bool {
	return c.apiKey != ""
}

// BreakerStates reports each endpoint's circuit breaker state.
func (c *OpenWeatherClient) BreakerStates() map[string]string {
	return map[string]string{
		"current":  c.current.BreakerState(),
		"forecast": c.forecast.BreakerState(),
		"uvi":      c.uvi.BreakerState(),
		"air":      c.air.BreakerState(),
		"geo":      c.geo.BreakerState(),
	}
}

// fetchError marks a rejected API key as unavailable, like a missing one.
func fetchError(what string, err error) error {
	if StatusCode(err) == http.StatusUnauthorized {
		return apperrors.Wrap(err, apperrors.ServiceUnavailableError, "weather service unavailable")
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

func (c *OpenWeatherClient) coordQuery(coords models.Coordinates) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	return q
}

func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, coords models.Coordinates) (*models.CurrentConditions, error) {
	if !c.Available() {
		return nil, apperrors.ErrAPIKeyMissing
	}

	data, err := c.current.GetWithRetry(ctx, c.baseURL+"/weather", c.coordQuery(coords))
	if err != nil {
		return nil, fetchError("current weather", err)
	}

	var response OpenWeatherCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperrors.Wrap(err, apperrors.MalformedResponseError, "malformed current weather response")
	}

	if response.Cod != 0 && response.Cod != 200 {
		return nil, fmt.Errorf("API error: %d", response.Cod)
	}
	if response.Main == nil || len(response.Weather) == 0 {
		return nil, apperrors.Malformed("current weather", "missing main or weather block")
	}

	return &models.CurrentConditions{
		LocationName:   response.Name,
		CountryCode:    response.Sys.Country,
		TempC:          response.Main.Temp,
		FeelsLikeC:     response.Main.FeelsLike,
		TempMinC:       response.Main.TempMin,
		TempMaxC:       response.Main.TempMax,
		HumidityPct:    units.Round(response.Main.Humidity),
		PressureHPa:    units.Round(response.Main.Pressure),
		WindSpeedKmh:   units.MsToKmhRounded(response.Wind.Speed),
		CloudsPct:      response.Clouds.All,
		Weather:        toCondition(response.Weather[0]),
		SunriseEpoch:   response.Sys.Sunrise,
		SunsetEpoch:    response.Sys.Sunset,
		VisibilityM:    response.Visibility,
		TimezoneOffset: response.Timezone,
		ObservedAt:     time.Unix(response.Dt, 0).UTC(),
	}, nil
}

// GetForecast returns the 5 day / 3 hour forecast in chronological order.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, coords models.Coordinates) ([]models.ForecastSample, error) {
	if !c.Available() {
		return nil, apperrors.ErrAPIKeyMissing
	}

	data, err := c.forecast.GetWithRetry(ctx, c.baseURL+"/forecast", c.coordQuery(coords))
	if err != nil {
		return nil, fetchError("forecast", err)
	}

	var response OpenWeatherForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperrors.Wrap(err, apperrors.MalformedResponseError, "malformed forecast response")
	}

	if response.Cod != "" && response.Cod != "200" {
		return nil, fmt.Errorf("API error: %s", response.Cod)
	}
	if len(response.List) == 0 {
		return nil, apperrors.Malformed("forecast", "empty list")
	}

	samples := make([]models.ForecastSample, 0, len(response.List))
	for i, item := range response.List {
		if item.Dt == 0 || item.Main == nil {
			return nil, apperrors.Malformed("forecast", fmt.Sprintf("item %d missing dt or main block", i))
		}
		sample := models.ForecastSample{
			Timestamp:   time.Unix(item.Dt, 0).UTC(),
			TempC:       item.Main.Temp,
			FeelsLikeC:  item.Main.FeelsLike,
			TempMinC:    item.Main.TempMin,
			TempMaxC:    item.Main.TempMax,
			HumidityPct: units.Round(item.Main.Humidity),
			PressureHPa: units.Round(item.Main.Pressure),
			WindSpeedMs: item.Wind.Speed,
			CloudsPct:   item.Clouds.All,
			Pop:         item.Pop,
			VisibilityM: item.Visibility,
		}
		if len(item.Weather) > 0 {
			sample.Weather = toCondition(item.Weather[0])
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func (c *OpenWeatherClient) GetUVIndex(ctx context.Context, coords models.Coordinates) (float64, error) {
	if !c.Available() {
		return 0, apperrors.ErrAPIKeyMissing
	}

	data, err := c.uvi.GetWithRetry(ctx, c.baseURL+"/uvi", c.coordQuery(coords))
	if err != nil {
		return 0, fetchError("uv index", err)
	}

	var response OpenWeatherUVResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return 0, apperrors.Wrap(err, apperrors.MalformedResponseError, "malformed uv response")
	}
	if response.Value == nil {
		return 0, apperrors.Malformed("uv", "missing value")
	}

	return *response.Value, nil
}

func (c *OpenWeatherClient) GetAirPollution(ctx context.Context, coords models.Coordinates) (*models.AirQualityRaw, error) {
	if !c.Available() {
		return nil, apperrors.ErrAPIKeyMissing
	}

	data, err := c.air.GetWithRetry(ctx, c.baseURL+"/air_pollution", c.coordQuery(coords))
	if err != nil {
		return nil, fetchError("air pollution", err)
	}

	var response OpenWeatherAirResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperrors.Wrap(err, apperrors.MalformedResponseError, "malformed air pollution response")
	}
	if len(response.List) == 0 {
		return nil, apperrors.Malformed("air pollution", "empty list")
	}

	first := response.List[0]
	return &models.AirQualityRaw{
		AQI:        first.Main.AQI,
		Components: first.Components,
	}, nil
}

// Geocode looks up a city name, returning at most limit matches.
func (c *OpenWeatherClient) Geocode(ctx context.Context, city string, limit int) ([]models.Location, error) {
	if !c.Available() {
		return nil, apperrors.ErrAPIKeyMissing
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("appid", c.apiKey)

	data, err := c.geo.GetWithRetry(ctx, c.geoURL+"/direct", q)
	if err != nil {
		return nil, fetchError(fmt.Sprintf("geocode %q", city), err)
	}

	var results []OpenWeatherGeoResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, apperrors.Wrap(err, apperrors.MalformedResponseError, "malformed geocoding response")
	}

	locations := make([]models.Location, 0, len(results))
	for _, r := range results {
		locations = append(locations, models.Location{
			Coordinates: models.Coordinates{Lat: r.Lat, Lon: r.Lon},
			Name:        r.Name,
			Country:     r.Country,
		})
	}
	return locations, nil
}

func toCondition(w openWeatherCondition) models.WeatherCondition {
	return models.WeatherCondition{
		Main:        w.Main,
		Description: w.Description,
		Icon:        w.Icon,
	}
}
