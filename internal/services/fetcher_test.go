package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
)

var parisCoords = models.Coordinates{Lat: 48.85, Lon: 2.35}

func TestFetchAllSucceed(t *testing.T) {
	obs := &recordingObserver{}
	f := NewWeatherFetcher(newFakeSource(), zap.NewNop(), obs)

	raw, err := f.Fetch(context.Background(), parisCoords)
	require.NoError(t, err)

	require.NotNil(t, raw.Current)
	assert.Len(t, raw.Forecast, 40)
	require.NotNil(t, raw.UV)
	assert.Equal(t, 6.3, *raw.UV)
	require.NotNil(t, raw.Air)
	assert.Equal(t, 2, raw.Air.AQI)
	assert.Len(t, obs.snapshot(), 4)
}

func TestFetchCriticalFailure(t *testing.T) {
	cases := map[string]func(*fakeSource){
		"current": func(s *fakeSource) {
			s.current = func(context.Context, models.Coordinates) (*models.CurrentConditions, error) {
				return nil, errProvider
			}
		},
		"forecast": func(s *fakeSource) {
			s.forecast = func(context.Context, models.Coordinates) ([]models.ForecastSample, error) {
				return nil, errProvider
			}
		},
		"malformed forecast": func(s *fakeSource) {
			s.forecast = func(context.Context, models.Coordinates) ([]models.ForecastSample, error) {
				return nil, apperrors.Malformed("forecast", "empty list")
			}
		},
	}

	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			src := newFakeSource()
			breakIt(src)
			obs := &recordingObserver{}
			f := NewWeatherFetcher(src, zap.NewNop(), obs)

			raw, err := f.Fetch(context.Background(), parisCoords)

			assert.Nil(t, raw, "never a partial result")
			assert.True(t, apperrors.Is(err, apperrors.WeatherUnavailableError))
			for _, ev := range obs.snapshot() {
				assert.Equal(t, Critical, ev.tier, "advisory calls wait for the critical pair")
			}
		})
	}
}

func TestFetchCriticalFailureCancelsSibling(t *testing.T) {
	src := newFakeSource()
	src.current = func(context.Context, models.Coordinates) (*models.CurrentConditions, error) {
		return nil, errProvider
	}
	src.forecast = func(ctx context.Context, _ models.Coordinates) ([]models.ForecastSample, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f := NewWeatherFetcher(src, zap.NewNop(), nil)

	_, err := f.Fetch(context.Background(), parisCoords)
	assert.True(t, apperrors.Is(err, apperrors.WeatherUnavailableError))
}

func TestFetchAdvisoryFailuresAreAbsorbed(t *testing.T) {
	t.Run("uv", func(t *testing.T) {
		src := newFakeSource()
		src.uv = func(context.Context, models.Coordinates) (float64, error) { return 0, errProvider }

		raw, err := NewWeatherFetcher(src, zap.NewNop(), nil).Fetch(context.Background(), parisCoords)
		require.NoError(t, err)
		assert.Nil(t, raw.UV)
		assert.NotNil(t, raw.Air)
	})

	t.Run("air", func(t *testing.T) {
		src := newFakeSource()
		src.air = func(context.Context, models.Coordinates) (*models.AirQualityRaw, error) { return nil, errProvider }

		raw, err := NewWeatherFetcher(src, zap.NewNop(), nil).Fetch(context.Background(), parisCoords)
		require.NoError(t, err)
		assert.Nil(t, raw.Air)
		assert.NotNil(t, raw.UV)
	})

	t.Run("both", func(t *testing.T) {
		src := newFakeSource()
		src.uv = func(context.Context, models.Coordinates) (float64, error) { return 0, errProvider }
		src.air = func(context.Context, models.Coordinates) (*models.AirQualityRaw, error) { return nil, errProvider }
		obs := &recordingObserver{}

		raw, err := NewWeatherFetcher(src, zap.NewNop(), obs).Fetch(context.Background(), parisCoords)
		require.NoError(t, err)
		assert.NotNil(t, raw.Current)
		assert.NotEmpty(t, raw.Forecast)
		assert.Nil(t, raw.UV)
		assert.Nil(t, raw.Air)

		failed := 0
		for _, ev := range obs.snapshot() {
			if ev.failed {
				failed++
				assert.Equal(t, Advisory, ev.tier)
			}
		}
		assert.Equal(t, 2, failed)
	})
}

func TestFetchMissingAPIKey(t *testing.T) {
	src := newFakeSource()
	src.current = func(context.Context, models.Coordinates) (*models.CurrentConditions, error) {
		return nil, apperrors.ErrAPIKeyMissing
	}

	_, err := NewWeatherFetcher(src, zap.NewNop(), nil).Fetch(context.Background(), parisCoords)
	assert.True(t, apperrors.Is(err, apperrors.ServiceUnavailableError))
}

func TestFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newFakeSource()
	src.current = func(ctx context.Context, _ models.Coordinates) (*models.CurrentConditions, error) {
		return nil, ctx.Err()
	}

	_, err := NewWeatherFetcher(src, zap.NewNop(), nil).Fetch(ctx, parisCoords)
	assert.ErrorIs(t, err, context.Canceled)
}
