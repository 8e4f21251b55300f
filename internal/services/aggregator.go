package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/config"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/bobby-s-dev/weather-app/pkg/client"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Aggregator runs the resolve, fetch and aggregate pipeline and caches the
// resulting view models.
type Aggregator struct {
	resolver      *GeoResolver
	fetcher       *WeatherFetcher
	forecast      *ForecastAggregator
	cache         ViewCache
	logger        *zap.Logger
	available     func() bool
	breakers      func() map[string]string
	mu            sync.RWMutex
	lastFetchTime time.Time
	successCount  int
	failureCount  int
}

type AggregatorOptions struct {
	Resolver *GeoResolver
	Fetcher  *WeatherFetcher
	Forecast *ForecastAggregator
	Cache    ViewCache
	Logger   *zap.Logger
	// Available reports whether the weather provider is configured.
	Available func() bool
	// Breakers reports provider circuit breaker states for stats.
	Breakers func() map[string]string
}

func NewAggregator(cfg *config.Config, logger *zap.Logger, observer FetchObserver) (*Aggregator, error) {
	clientConfig := client.ClientConfig{
		Timeout:           cfg.Client.Timeout,
		MaxRetries:        cfg.Retry.MaxRetries,
		RetryDelay:        cfg.Retry.Delay,
		Multiplier:        cfg.Retry.Multiplier,
		Threshold:         cfg.CircuitBreaker.Threshold,
		BreakerTimeout:    cfg.CircuitBreaker.Timeout,
		RequestsPerSecond: cfg.OpenWeather.RequestsPerS,
		Burst:             cfg.OpenWeather.Burst,
	}

	openWeatherClient := client.NewOpenWeatherClient(
		cfg.OpenWeather.APIKey,
		cfg.OpenWeather.BaseURL,
		cfg.OpenWeather.GeoURL,
		clientConfig,
		logger,
	)
	if openWeatherClient.Available() {
		logger.Info("OpenWeatherMap client initialized")
	} else {
		logger.Warn("OpenWeatherMap client has no API key, weather lookups are unavailable")
	}

	geocoders := []Geocoder{openWeatherClient}
	if cfg.Geocoding.OpenMeteoURL != "" {
		// Open-Meteo needs no API key
		geocoders = append(geocoders, client.NewOpenMeteoClient(cfg.Geocoding.OpenMeteoURL, clientConfig, logger))
		logger.Info("Open-Meteo geocoding fallback initialized")
	}

	var cache ViewCache
	if cfg.Cache.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		redisCache, err := NewRedisCacheFromURL(ctx, cfg.Cache.RedisURL, cfg.Cache.Duration, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = redisCache
		logger.Info("Redis view cache initialized")
	} else {
		cache = NewWeatherCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger)
	}

	return NewAggregatorWithOptions(AggregatorOptions{
		Resolver:  NewGeoResolver(logger, geocoders...),
		Fetcher:   NewWeatherFetcher(openWeatherClient, logger, observer),
		Forecast:  NewForecastAggregator(cfg.Forecast.HourlyLimit, cfg.Forecast.DailyDays),
		Cache:     cache,
		Logger:    logger,
		Available: openWeatherClient.Available,
		Breakers:  openWeatherClient.BreakerStates,
	}), nil
}

func NewAggregatorWithOptions(opts AggregatorOptions) *Aggregator {
	if opts.Forecast == nil {
		opts.Forecast = NewForecastAggregator(DefaultHourlyLimit, DefaultDailyDays)
	}
	if opts.Available == nil {
		opts.Available = func() bool { return true }
	}
	return &Aggregator{
		resolver:  opts.Resolver,
		fetcher:   opts.Fetcher,
		forecast:  opts.Forecast,
		cache:     opts.Cache,
		logger:    opts.Logger,
		available: opts.Available,
		breakers:  opts.Breakers,
	}
}

// GetViewModel serves from cache when possible, otherwise builds a fresh view model.
func (a *Aggregator) GetViewModel(ctx context.Context, q Query) (*models.ViewModel, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, q.Key()); ok {
			a.logger.Debug("Cache hit for view model", zap.String("query", q.String()))
			return cached, nil
		}
	}

	return a.Refresh(ctx, q)
}

// Refresh always goes to the provider and replaces the cached entry on success.
func (a *Aggregator) Refresh(ctx context.Context, q Query) (*models.ViewModel, error) {
	a.mu.Lock()
	a.lastFetchTime = time.Now()
	a.mu.Unlock()

	vm, err := a.build(ctx, q)
	a.mu.Lock()
	switch {
	case err == nil:
		a.successCount++
	case ctx.Err() == nil:
		a.failureCount++
	}
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, q.Key(), vm)
	}
	return vm, nil
}

func (a *Aggregator) build(ctx context.Context, q Query) (*models.ViewModel, error) {
	loc, err := a.resolver.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	raw, err := a.fetcher.Fetch(ctx, loc.Coordinates)
	if err != nil {
		return nil, err
	}

	return a.BuildViewModel(q, loc, raw), nil
}

// BuildViewModel assembles the immutable view model from fetched data.
func (a *Aggregator) BuildViewModel(q Query, loc models.Location, raw *models.RawWeather) *models.ViewModel {
	current := *raw.Current
	if loc.Name == "" {
		loc.Name = current.LocationName
		loc.Country = current.CountryCode
	}

	tz := time.FixedZone("", current.TimezoneOffset)

	var air *models.AirQuality
	if raw.Air != nil {
		classified, err := ClassifyAirQuality(raw.Air.AQI, raw.Air.Components)
		if err != nil {
			a.logger.Warn("Dropping malformed air quality reading",
				zap.String("query", q.String()),
				zap.Error(err))
		} else {
			air = classified
		}
	}

	return &models.ViewModel{
		ID:         uuid.NewString(),
		Query:      q.String(),
		Location:   loc,
		Current:    current,
		Hourly:     a.forecast.ToHourly(raw.Forecast, a.forecast.HourlyLimit),
		Daily:      a.forecast.ToDaily(raw.Forecast, current.SunriseEpoch, current.SunsetEpoch, tz),
		AirQuality: air,
		UV:         ClassifyUV(raw.UV),
		Units:      models.Metric,
		FetchedAt:  time.Now().UTC(),
	}
}

// WarmCities refreshes every city concurrently, used by the scheduler.
func (a *Aggregator) WarmCities(ctx context.Context, cities []string) error {
	var wg sync.WaitGroup
	errors := make(chan error, len(cities))

	startTime := time.Now()

	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			if _, err := a.Refresh(ctx, CityQuery(city)); err != nil {
				a.logger.Error("Failed to fetch weather for city",
					zap.String("city", city),
					zap.Error(err))
				errors <- err
			}
		}(city)
	}

	wg.Wait()
	close(errors)

	failed := len(errors)
	a.logger.Info("Weather warm-up completed",
		zap.Int("cities", len(cities)),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d cities failed to fetch weather data", failed, len(cities))
	}
	return nil
}

func (a *Aggregator) Available() bool {
	return a.available()
}

func (a *Aggregator) GetLastFetchTime() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastFetchTime
}

func (a *Aggregator) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]interface{}{
		"last_fetch_time": a.lastFetchTime,
		"success_count":   a.successCount,
		"failure_count":   a.failureCount,
		"available":       a.available(),
	}
	if a.cache != nil {
		stats["cache_stats"] = a.cache.Stats()
	}
	if a.breakers != nil {
		stats["circuit_breakers"] = a.breakers()
	}
	return stats
}

func (a *Aggregator) Stop() {
	if a.cache != nil {
		a.cache.Stop()
	}
}
