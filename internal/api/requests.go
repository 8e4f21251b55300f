package api

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/bobby-s-dev/weather-app/internal/services"
)

var validate = validator.New()

// locationRequest is either a city or a lat/lon pair.
type locationRequest struct {
	City string   `json:"city" validate:"omitempty,max=100"`
	Lat  *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (r locationRequest) toQuery() (services.Query, error) {
	if err := validate.Struct(r); err != nil {
		return services.Query{}, apperrors.ValidationFailed("invalid location", err.Error())
	}
	if (r.Lat == nil) != (r.Lon == nil) {
		return services.Query{}, apperrors.ValidationFailed("lat and lon must be given together", "")
	}

	q := services.Query{City: strings.TrimSpace(r.City)}
	if r.Lat != nil && r.Lon != nil {
		q.Coordinates = &models.Coordinates{Lat: *r.Lat, Lon: *r.Lon}
	}
	if err := q.Validate(); err != nil {
		return services.Query{}, err
	}
	return q, nil
}

type geolocationRequest struct {
	locationRequest
	// Error carries the browser's failure code when no position was obtained.
	Error string `json:"error" validate:"omitempty,max=40"`
}

type citiesRequest struct {
	Cities []string `json:"cities" validate:"required,min=1,max=20,dive,required,max=100"`
}

type unitsRequest struct {
	Units string `validate:"omitempty,oneof=metric imperial"`
}

func parseLocationQuery(c *fiber.Ctx) (services.Query, error) {
	var req locationRequest
	req.City = c.Query("city")

	var err error
	if req.Lat, err = parseOptionalFloat(c.Query("lat")); err != nil {
		return services.Query{}, apperrors.ValidationFailed("invalid lat", err.Error())
	}
	if req.Lon, err = parseOptionalFloat(c.Query("lon")); err != nil {
		return services.Query{}, apperrors.ValidationFailed("invalid lon", err.Error())
	}

	return req.toQuery()
}

func parseUnits(c *fiber.Ctx) (models.UnitSystem, error) {
	req := unitsRequest{Units: strings.ToLower(c.Query("units"))}
	if err := validate.Struct(req); err != nil {
		return "", apperrors.ValidationFailed("units must be metric or imperial", err.Error())
	}
	if req.Units == "" {
		return models.Metric, nil
	}
	return models.UnitSystem(req.Units), nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
