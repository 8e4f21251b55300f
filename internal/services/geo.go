package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"go.uber.org/zap"
)

type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, city string, limit int) ([]models.Location, error)
}

// Query is a search input: either a city name or browser-supplied coordinates.
type Query struct {
	City        string              `json:"city,omitempty"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}

func CityQuery(city string) Query {
	return Query{City: city}
}

func CoordinatesQuery(lat, lon float64) Query {
	return Query{Coordinates: &models.Coordinates{Lat: lat, Lon: lon}}
}

func (q Query) Validate() error {
	city := strings.TrimSpace(q.City)
	switch {
	case city == "" && q.Coordinates == nil:
		return apperrors.ValidationFailed("city or coordinates are required", "")
	case city != "" && q.Coordinates != nil:
		return apperrors.ValidationFailed("provide either city or coordinates, not both", "")
	case q.Coordinates != nil:
		c := q.Coordinates
		if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			return apperrors.ValidationFailed("coordinates out of range", fmt.Sprintf("lat=%v lon=%v", c.Lat, c.Lon))
		}
	}
	return nil
}

// Key normalizes the query for caching.
func (q Query) Key() string {
	if q.Coordinates != nil {
		return "coords:" + strconv.FormatFloat(q.Coordinates.Lat, 'f', 4, 64) + "," +
			strconv.FormatFloat(q.Coordinates.Lon, 'f', 4, 64)
	}
	return "city:" + strings.ToLower(strings.TrimSpace(q.City))
}

func (q Query) String() string {
	if q.Coordinates != nil {
		return fmt.Sprintf("%.4f,%.4f", q.Coordinates.Lat, q.Coordinates.Lon)
	}
	return strings.TrimSpace(q.City)
}

// GeoResolver turns a Query into a Location. Geocoders are tried in order; a
// later one is only consulted when an earlier one failed outright.
type GeoResolver struct {
	geocoders []Geocoder
	logger    *zap.Logger
}

func NewGeoResolver(logger *zap.Logger, geocoders ...Geocoder) *GeoResolver {
	return &GeoResolver{geocoders: geocoders, logger: logger}
}

func (r *GeoResolver) Resolve(ctx context.Context, q Query) (models.Location, error) {
	if err := q.Validate(); err != nil {
		return models.Location{}, err
	}
	if q.Coordinates != nil {
		return models.Location{Coordinates: *q.Coordinates}, nil
	}

	city := strings.TrimSpace(q.City)
	var lastErr error
	for _, g := range r.geocoders {
		locs, err := g.Geocode(ctx, city, 1)
		if err != nil {
			if ctx.Err() != nil {
				return models.Location{}, ctx.Err()
			}
			r.logger.Warn("Geocoding failed",
				zap.String("source", g.Name()),
				zap.String("city", city),
				zap.Error(err))
			lastErr = err
			continue
		}
		if len(locs) == 0 {
			return models.Location{}, apperrors.NotFound("city", city)
		}

		r.logger.Debug("City resolved",
			zap.String("source", g.Name()),
			zap.String("city", city),
			zap.Float64("lat", locs[0].Lat),
			zap.Float64("lon", locs[0].Lon))
		return locs[0], nil
	}

	if lastErr == nil {
		return models.Location{}, apperrors.New(apperrors.ServiceUnavailableError, "no geocoder configured", "")
	}
	if apperrors.Is(lastErr, apperrors.ServiceUnavailableError) {
		return models.Location{}, lastErr
	}
	return models.Location{}, apperrors.WeatherUnavailable(lastErr)
}
