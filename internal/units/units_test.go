package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMsToKmhRounded(t *testing.T) {
	assert.Equal(t, 36, MsToKmhRounded(10))
	assert.Equal(t, 0, MsToKmhRounded(0))
	assert.Equal(t, 15, MsToKmhRounded(4.1))
	assert.InDelta(t, 14.76, MsToKmh(4.1), 1e-9)
}

func TestCelsiusToFahrenheit(t *testing.T) {
	assert.Equal(t, 32.0, CelsiusToFahrenheit(0))
	assert.Equal(t, 212.0, CelsiusToFahrenheit(100))
	assert.Equal(t, -40.0, CelsiusToFahrenheit(-40))
}

func TestKmhToMph(t *testing.T) {
	assert.InDelta(t, 1.0, KmhToMph(1.609), 1e-9)
	assert.InDelta(t, 22.374, KmhToMph(36), 1e-3)
}

func TestProbabilityToPercent(t *testing.T) {
	cases := map[float64]int{
		0:     0,
		0.2:   20,
		0.556: 56,
		1:     100,
	}
	for in, want := range cases {
		assert.Equal(t, want, ProbabilityToPercent(in), "pop %v", in)
	}
}

func TestMetersToKm(t *testing.T) {
	assert.Equal(t, 10, MetersToKm(10000))
	assert.Equal(t, 2, MetersToKm(1500))
	assert.Equal(t, 0, MetersToKm(400))
}
