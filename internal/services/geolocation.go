package services

import (
	"strings"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
)

type GeolocationCode string

const (
	PermissionDenied    GeolocationCode = "PERMISSION_DENIED"
	PositionUnavailable GeolocationCode = "POSITION_UNAVAILABLE"
	Timeout             GeolocationCode = "TIMEOUT"
	UnknownGeolocation  GeolocationCode = "UNKNOWN"
)

var geolocationMessages = map[GeolocationCode]string{
	PermissionDenied:    "Location access denied. Please enable location permissions or search for a city.",
	PositionUnavailable: "Location information is unavailable. Please search for a city instead.",
	Timeout:             "Location request timed out. Please try again or search for a city.",
	UnknownGeolocation:  "An unknown error occurred while getting your location.",
}

// ParseGeolocationCode accepts the browser's symbolic names and the numeric
// PositionError codes (1, 2, 3). Anything else is UNKNOWN.
func ParseGeolocationCode(raw string) GeolocationCode {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PERMISSION_DENIED", "1":
		return PermissionDenied
	case "POSITION_UNAVAILABLE", "2":
		return PositionUnavailable
	case "TIMEOUT", "3":
		return Timeout
	default:
		return UnknownGeolocation
	}
}

// GeolocationError turns a reported browser failure into a user-facing error.
// No retry or IP-based fallback is attempted.
func GeolocationError(raw string) *apperrors.AppError {
	code := ParseGeolocationCode(raw)
	err := apperrors.New(apperrors.GeolocationError, geolocationMessages[code], "")
	err.Code = string(code)
	return err
}
