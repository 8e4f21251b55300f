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

func TestResolveCity(t *testing.T) {
	geo := worldGeocoder()
	r := NewGeoResolver(zap.NewNop(), geo)

	loc, err := r.Resolve(context.Background(), CityQuery("  Paris "))
	require.NoError(t, err)
	assert.Equal(t, "Paris", loc.Name)
	assert.Equal(t, 48.85, loc.Lat)
	assert.Equal(t, 1, geo.callCount())
}

func TestResolveCityNotFound(t *testing.T) {
	fallback := worldGeocoder()
	r := NewGeoResolver(zap.NewNop(), worldGeocoder(), fallback)

	_, err := r.Resolve(context.Background(), CityQuery("Atlantis"))
	assert.True(t, apperrors.Is(err, apperrors.NotFoundError))
	assert.Equal(t, 0, fallback.callCount(), "an empty answer is final")
}

func TestResolveCoordinatesSkipsLookup(t *testing.T) {
	geo := worldGeocoder()
	r := NewGeoResolver(zap.NewNop(), geo)

	loc, err := r.Resolve(context.Background(), CoordinatesQuery(35.68, 139.69))
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Lat: 35.68, Lon: 139.69}, loc.Coordinates)
	assert.Empty(t, loc.Name)
	assert.Equal(t, 0, geo.callCount())
}

func TestResolveFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeGeocoder{name: "primary", err: apperrors.ErrAPIKeyMissing}
	fallback := worldGeocoder()
	r := NewGeoResolver(zap.NewNop(), primary, fallback)

	loc, err := r.Resolve(context.Background(), CityQuery("Tokyo"))
	require.NoError(t, err)
	assert.Equal(t, "JP", loc.Country)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 1, fallback.callCount())
}

func TestResolveAllGeocodersFail(t *testing.T) {
	r := NewGeoResolver(zap.NewNop(),
		&fakeGeocoder{name: "a", err: errProvider},
		&fakeGeocoder{name: "b", err: errProvider})

	_, err := r.Resolve(context.Background(), CityQuery("Paris"))
	assert.True(t, apperrors.Is(err, apperrors.WeatherUnavailableError))

	r = NewGeoResolver(zap.NewNop(), &fakeGeocoder{name: "a", err: apperrors.ErrAPIKeyMissing})
	_, err = r.Resolve(context.Background(), CityQuery("Paris"))
	assert.True(t, apperrors.Is(err, apperrors.ServiceUnavailableError))
}

func TestQueryValidate(t *testing.T) {
	assert.Error(t, Query{}.Validate())
	assert.Error(t, Query{City: "   "}.Validate())
	assert.Error(t, Query{City: "Paris", Coordinates: &models.Coordinates{}}.Validate())
	assert.Error(t, CoordinatesQuery(91, 0).Validate())
	assert.Error(t, CoordinatesQuery(0, -181).Validate())
	assert.NoError(t, CoordinatesQuery(-90, 180).Validate())
	assert.NoError(t, CityQuery("Paris").Validate())

	err := Query{}.Validate()
	assert.True(t, apperrors.Is(err, apperrors.ValidationError))
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, CityQuery("paris").Key(), CityQuery(" Paris ").Key())
	assert.Equal(t, "coords:48.8500,2.3500", CoordinatesQuery(48.85, 2.35).Key())
	assert.NotEqual(t, CityQuery("Paris").Key(), CityQuery("Tokyo").Key())
}
