package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-app/internal/services"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("current", services.Critical, 120*time.Millisecond, nil)
	m.ObserveFetch("uvi", services.Advisory, 80*time.Millisecond, errors.New("boom"))
	m.ObserveFetch("uvi", services.Advisory, 80*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("current", "critical", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("uvi", "advisory", "failure")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveSearch("superseded")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `weather_searches_total{outcome="superseded"} 1`)
}

func TestNewUsesIsolatedRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
