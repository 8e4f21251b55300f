package models

import "github.com/bobby-s-dev/weather-app/internal/units"

// InUnits returns a copy of vm expressed in the requested unit system.
// Temperatures become °F and wind speeds mph for Imperial; vm itself is untouched.
func (vm *ViewModel) InUnits(system UnitSystem) *ViewModel {
	if system != Imperial || vm.Units == Imperial {
		return vm
	}

	out := *vm
	out.Units = Imperial

	cur := vm.Current
	cur.TempC = units.CelsiusToFahrenheit(cur.TempC)
	cur.FeelsLikeC = units.CelsiusToFahrenheit(cur.FeelsLikeC)
	cur.TempMinC = units.CelsiusToFahrenheit(cur.TempMinC)
	cur.TempMaxC = units.CelsiusToFahrenheit(cur.TempMaxC)
	cur.WindSpeedKmh = units.Round(units.KmhToMph(float64(cur.WindSpeedKmh)))
	out.Current = cur

	out.Hourly = make([]HourlyEntry, len(vm.Hourly))
	for i, h := range vm.Hourly {
		h.Temp = units.Round(units.CelsiusToFahrenheit(float64(h.Temp)))
		h.FeelsLike = units.Round(units.CelsiusToFahrenheit(float64(h.FeelsLike)))
		h.WindSpeed = units.Round(units.KmhToMph(float64(h.WindSpeed)))
		out.Hourly[i] = h
	}

	out.Daily = make([]DailyEntry, len(vm.Daily))
	for i, d := range vm.Daily {
		d.TempMax = units.Round(units.CelsiusToFahrenheit(float64(d.TempMax)))
		d.TempMin = units.Round(units.CelsiusToFahrenheit(float64(d.TempMin)))
		d.TempMean = units.Round(units.CelsiusToFahrenheit(float64(d.TempMean)))
		d.WindSpeed = units.Round(units.KmhToMph(float64(d.WindSpeed)))
		out.Daily[i] = d
	}

	return &out
}
