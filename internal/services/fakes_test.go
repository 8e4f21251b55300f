package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/models"
)

var errProvider = errors.New("provider down")

type fakeSource struct {
	current  func(ctx context.Context, c models.Coordinates) (*models.CurrentConditions, error)
	forecast func(ctx context.Context, c models.Coordinates) ([]models.ForecastSample, error)
	uv       func(ctx context.Context, c models.Coordinates) (float64, error)
	air      func(ctx context.Context, c models.Coordinates) (*models.AirQualityRaw, error)
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		current: func(_ context.Context, c models.Coordinates) (*models.CurrentConditions, error) {
			return &models.CurrentConditions{
				LocationName: "Paris",
				CountryCode:  "FR",
				TempC:        21.4,
				SunriseEpoch: 1717991000,
				SunsetEpoch:  1718049000,
				Weather:      models.WeatherCondition{Main: "Clear", Description: "clear sky", Icon: "01d"},
			}, nil
		},
		forecast: func(context.Context, models.Coordinates) ([]models.ForecastSample, error) {
			return buildSamples(5, 8), nil
		},
		uv: func(context.Context, models.Coordinates) (float64, error) {
			return 6.3, nil
		},
		air: func(context.Context, models.Coordinates) (*models.AirQualityRaw, error) {
			return &models.AirQualityRaw{AQI: 2, Components: fullComponents()}, nil
		},
	}
}

func (f *fakeSource) GetCurrentWeather(ctx context.Context, c models.Coordinates) (*models.CurrentConditions, error) {
	return f.current(ctx, c)
}

func (f *fakeSource) GetForecast(ctx context.Context, c models.Coordinates) ([]models.ForecastSample, error) {
	return f.forecast(ctx, c)
}

func (f *fakeSource) GetUVIndex(ctx context.Context, c models.Coordinates) (float64, error) {
	return f.uv(ctx, c)
}

func (f *fakeSource) GetAirPollution(ctx context.Context, c models.Coordinates) (*models.AirQualityRaw, error) {
	return f.air(ctx, c)
}

type fakeGeocoder struct {
	name    string
	results map[string][]models.Location
	err     error
	mu      sync.Mutex
	calls   int
}

func (g *fakeGeocoder) Name() string { return g.name }

func (g *fakeGeocoder) Geocode(_ context.Context, city string, limit int) ([]models.Location, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	locs := g.results[city]
	if len(locs) > limit {
		locs = locs[:limit]
	}
	return locs, nil
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordedFetch struct {
	endpoint string
	tier     Tier
	failed   bool
}

type recordingObserver struct {
	mu     sync.Mutex
	events []recordedFetch
}

func (o *recordingObserver) ObserveFetch(endpoint string, tier Tier, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, recordedFetch{endpoint: endpoint, tier: tier, failed: err != nil})
}

func (o *recordingObserver) snapshot() []recordedFetch {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]recordedFetch(nil), o.events...)
}

func worldGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		name: "fake",
		results: map[string][]models.Location{
			"Paris": {{Coordinates: models.Coordinates{Lat: 48.85, Lon: 2.35}, Name: "Paris", Country: "FR"}},
			"Tokyo": {{Coordinates: models.Coordinates{Lat: 35.68, Lon: 139.69}, Name: "Tokyo", Country: "JP"}},
		},
	}
}
