package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
)

func fullComponents() map[string]float64 {
	return map[string]float64{
		"co": 201.94, "no": 0.02, "no2": 0.77, "o3": 68.66,
		"so2": 0.64, "pm2_5": 0.5, "pm10": 0.54, "nh3": 0.12,
	}
}

func TestClassifyAirQualityLabels(t *testing.T) {
	cases := map[int]string{
		1: "Good",
		2: "Fair",
		3: "Moderate",
		4: "Poor",
		5: "Very Poor",
		0: "Unknown",
		6: "Unknown",
	}
	for aqi, want := range cases {
		air, err := ClassifyAirQuality(aqi, fullComponents())
		require.NoError(t, err, "aqi %d", aqi)
		assert.Equal(t, want, air.Label, "aqi %d", aqi)
		assert.Equal(t, aqi, air.AQI)
	}
}

func TestClassifyAirQualityPassesComponentsThrough(t *testing.T) {
	air, err := ClassifyAirQuality(3, fullComponents())
	require.NoError(t, err)

	assert.Equal(t, "orange", air.Color)
	assert.Equal(t, 201.94, air.Components.CO)
	assert.Equal(t, 0.5, air.Components.PM25)
	assert.Equal(t, 0.54, air.Components.PM10)
	assert.Equal(t, 0.12, air.Components.NH3)
}

func TestClassifyAirQualityMissingComponents(t *testing.T) {
	components := fullComponents()
	delete(components, "o3")

	air, err := ClassifyAirQuality(2, components)
	assert.Nil(t, air)
	assert.True(t, apperrors.Is(err, apperrors.MalformedResponseError))

	_, err = ClassifyAirQuality(2, nil)
	assert.Error(t, err)
}

func TestClassifyUV(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	cases := []struct {
		value *float64
		level string
		label string
	}{
		{nil, "N/A", "N/A"},
		{f(0), "Low", "0 (Low)"},
		{f(2), "Low", "2 (Low)"},
		{f(2.01), "Moderate", "2.01 (Moderate)"},
		{f(5), "Moderate", "5 (Moderate)"},
		{f(6.3), "High", "6.3 (High)"},
		{f(7), "High", "7 (High)"},
		{f(10), "Very High", "10 (Very High)"},
		{f(10.5), "Extreme", "10.5 (Extreme)"},
	}
	for _, tc := range cases {
		uv := ClassifyUV(tc.value)
		assert.Equal(t, tc.level, uv.Level)
		assert.Equal(t, tc.label, uv.Label)
		assert.Equal(t, tc.value, uv.Value)
	}

	assert.Equal(t, "gray", ClassifyUV(nil).Color)
	assert.Equal(t, "purple", ClassifyUV(f(11)).Color)
}
