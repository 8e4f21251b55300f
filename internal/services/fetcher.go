package services

import (
	"context"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, coords models.Coordinates) (*models.CurrentConditions, error)
	GetForecast(ctx context.Context, coords models.Coordinates) ([]models.ForecastSample, error)
	GetUVIndex(ctx context.Context, coords models.Coordinates) (float64, error)
	GetAirPollution(ctx context.Context, coords models.Coordinates) (*models.AirQualityRaw, error)
}

type Tier string

const (
	Critical Tier = "critical"
	Advisory Tier = "advisory"
)

// FetchObserver receives one event per provider call.
type FetchObserver interface {
	ObserveFetch(endpoint string, tier Tier, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, Tier, time.Duration, error) {}

// WeatherFetcher retrieves everything needed for one set of coordinates.
// Current conditions and the forecast are critical: if either fails the whole
// fetch fails. UV and air quality are advisory and degrade to nil.
type WeatherFetcher struct {
	source   WeatherSource
	logger   *zap.Logger
	observer FetchObserver
}

func NewWeatherFetcher(source WeatherSource, logger *zap.Logger, observer FetchObserver) *WeatherFetcher {
	if observer == nil {
		observer = nopObserver{}
	}
	return &WeatherFetcher{source: source, logger: logger, observer: observer}
}

func (f *WeatherFetcher) Fetch(ctx context.Context, coords models.Coordinates) (*models.RawWeather, error) {
	raw := &models.RawWeather{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		current, err := f.source.GetCurrentWeather(gctx, coords)
		f.observe("current", Critical, start, err)
		if err != nil {
			return err
		}
		raw.Current = current
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		forecast, err := f.source.GetForecast(gctx, coords)
		f.observe("forecast", Critical, start, err)
		if err != nil {
			return err
		}
		raw.Forecast = forecast
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Error("Critical weather fetch failed",
			zap.Float64("lat", coords.Lat),
			zap.Float64("lon", coords.Lon),
			zap.Error(err))
		if apperrors.Is(err, apperrors.ServiceUnavailableError) {
			return nil, err
		}
		return nil, apperrors.WeatherUnavailable(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		uv, err := f.source.GetUVIndex(ctx, coords)
		f.observe("uvi", Advisory, start, err)
		if err != nil {
			f.advisoryFailed("uv index", coords, err)
			return
		}
		raw.UV = &uv
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		air, err := f.source.GetAirPollution(ctx, coords)
		f.observe("air_pollution", Advisory, start, err)
		if err != nil {
			f.advisoryFailed("air quality", coords, err)
			return
		}
		raw.Air = air
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return raw, nil
}

func (f *WeatherFetcher) observe(endpoint string, tier Tier, start time.Time, err error) {
	f.observer.ObserveFetch(endpoint, tier, time.Since(start), err)
}

func (f *WeatherFetcher) advisoryFailed(source string, coords models.Coordinates, err error) {
	f.logger.Warn("Advisory fetch failed, continuing without it",
		zap.String("source", source),
		zap.Float64("lat", coords.Lat),
		zap.Float64("lon", coords.Lon),
		zap.Error(apperrors.AdvisoryUnavailable(source, err)))
}
