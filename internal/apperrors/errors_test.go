package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ValidationFailed("bad", ""), http.StatusBadRequest},
		{"not found", NotFound("city", "Atlantis"), http.StatusNotFound},
		{"weather", WeatherUnavailable(errors.New("timeout")), http.StatusBadGateway},
		{"malformed", Malformed("forecast", "missing list"), http.StatusBadGateway},
		{"no key", ErrAPIKeyMissing, http.StatusServiceUnavailable},
		{"geolocation", New(GeolocationError, "denied", ""), http.StatusUnprocessableEntity},
		{"wrapped", fmt.Errorf("resolve: %w", NotFound("city", "x")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsMatchesByType(t *testing.T) {
	err := fmt.Errorf("fetch: %w", WeatherUnavailable(errors.New("dial tcp")))

	assert.True(t, Is(err, WeatherUnavailableError))
	assert.False(t, Is(err, NotFoundError))
	assert.Equal(t, WeatherUnavailableError, TypeOf(err))
	assert.Equal(t, ServerError, TypeOf(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := AdvisoryUnavailable("uv index", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "uv index unavailable", err.Message)
	assert.Equal(t, "connection refused", err.Detail)
	assert.Contains(t, err.Error(), "ADVISORY_UNAVAILABLE")
}
