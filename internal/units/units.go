// Package units converts provider values (always requested in metric) into display units.
package units

import "math"

const (
	msToKmh   = 3.6
	kmhPerMph = 1.609
)

// Round rounds half away from zero, matching how display values are produced.
func Round(v float64) int {
	return int(math.Round(v))
}

func MsToKmh(ms float64) float64 {
	return ms * msToKmh
}

// MsToKmhRounded is the display form used by hourly and current readings.
func MsToKmhRounded(ms float64) int {
	return Round(MsToKmh(ms))
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func KmhToMph(kmh float64) float64 {
	return kmh / kmhPerMph
}

// ProbabilityToPercent turns a [0,1] precipitation probability into a whole percent.
func ProbabilityToPercent(p float64) int {
	return Round(p * 100)
}

// MetersToKm converts a visibility in meters to rounded kilometers.
func MetersToKm(m int) int {
	return Round(float64(m) / 1000)
}
