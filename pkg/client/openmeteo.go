package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"go.uber.org/zap"
)

const DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1"

// OpenMeteoClient resolves city names through the keyless Open-Meteo geocoding API.
type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type OpenMeteoGeocodingResponse struct {
	Results []struct {
		ID          int     `json:"id"`
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		CountryCode string  `json:"country_code"`
		Country     string  `json:"country"`
		Timezone    string  `json:"timezone"`
	} `json:"results"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoGeocodingURL
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("openmeteo-geocoding", config, logger),
		baseURL:    baseURL,
	}
}

func (c *OpenMeteoClient) Name() string {
	return "open-meteo"
}

func (c *OpenMeteoClient) Geocode(ctx context.Context, city string, limit int) ([]models.Location, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", strconv.Itoa(limit))
	q.Set("language", "en")
	q.Set("format", "json")

	data, err := c.GetWithRetry(ctx, c.baseURL+"/search", q)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", city, err)
	}

	var response OpenMeteoGeocodingResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperrors.Wrap(err, apperrors.MalformedResponseError, "malformed geocoding response")
	}

	locations := make([]models.Location, 0, len(response.Results))
	for _, r := range response.Results {
		locations = append(locations, models.Location{
			Coordinates: models.Coordinates{Lat: r.Latitude, Lon: r.Longitude},
			Name:        r.Name,
			Country:     r.CountryCode,
		})
	}
	return locations, nil
}
