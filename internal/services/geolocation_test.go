package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
)

func TestParseGeolocationCode(t *testing.T) {
	cases := map[string]GeolocationCode{
		"PERMISSION_DENIED":    PermissionDenied,
		"permission_denied":    PermissionDenied,
		"1":                    PermissionDenied,
		"POSITION_UNAVAILABLE": PositionUnavailable,
		"2":                    PositionUnavailable,
		"TIMEOUT":              Timeout,
		" 3 ":                  Timeout,
		"":                     UnknownGeolocation,
		"42":                   UnknownGeolocation,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseGeolocationCode(in), "input %q", in)
	}
}

func TestGeolocationErrorMessages(t *testing.T) {
	seen := map[string]bool{}
	for _, raw := range []string{"PERMISSION_DENIED", "POSITION_UNAVAILABLE", "TIMEOUT", "bogus"} {
		err := GeolocationError(raw)
		assert.True(t, apperrors.Is(err, apperrors.GeolocationError))
		assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
		assert.NotEmpty(t, err.Message)
		seen[err.Message] = true
	}
	assert.Len(t, seen, 4, "each cause has its own message")
	assert.Equal(t, "TIMEOUT", GeolocationError("3").Code)
}
