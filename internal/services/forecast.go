package services

import (
	"time"

	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/bobby-s-dev/weather-app/internal/units"
)

const (
	DefaultHourlyLimit = 12
	DefaultDailyDays   = 5
	dateLayout         = "2006-01-02"
)

// ForecastAggregator reshapes the 3-hour forecast list into hourly and daily series.
type ForecastAggregator struct {
	HourlyLimit int
	MaxDays     int
}

func NewForecastAggregator(hourlyLimit, maxDays int) *ForecastAggregator {
	if hourlyLimit <= 0 {
		hourlyLimit = DefaultHourlyLimit
	}
	if maxDays <= 0 || maxDays > DefaultDailyDays {
		maxDays = DefaultDailyDays
	}
	return &ForecastAggregator{HourlyLimit: hourlyLimit, MaxDays: maxDays}
}

// ToHourly takes the first limit samples as-is, converted to display units.
// A limit outside (0, len] returns every sample.
func (f *ForecastAggregator) ToHourly(samples []models.ForecastSample, limit int) []models.HourlyEntry {
	if limit <= 0 || limit > len(samples) {
		limit = len(samples)
	}

	hourly := make([]models.HourlyEntry, 0, limit)
	for _, s := range samples[:limit] {
		entry := models.HourlyEntry{
			Time:        s.Timestamp,
			Temp:        units.Round(s.TempC),
			FeelsLike:   units.Round(s.FeelsLikeC),
			Icon:        s.Weather.Icon,
			Description: s.Weather.Description,
			HumidityPct: s.HumidityPct,
			WindSpeed:   units.MsToKmhRounded(s.WindSpeedMs),
			PressureHPa: s.PressureHPa,
			PopPct:      units.ProbabilityToPercent(s.Pop),
		}
		if s.VisibilityM != nil {
			km := units.MetersToKm(*s.VisibilityM)
			entry.VisibilityKm = &km
		}
		hourly = append(hourly, entry)
	}
	return hourly
}

type dayGroup struct {
	date    string
	samples []models.ForecastSample
}

// ToDaily groups samples by their calendar date in loc, keeping groups in the
// order dates first appear and at most MaxDays of them. The provider only
// reports today's sunrise and sunset, so every day carries the same pair.
func (f *ForecastAggregator) ToDaily(samples []models.ForecastSample, sunrise, sunset int64, loc *time.Location) []models.DailyEntry {
	if loc == nil {
		loc = time.UTC
	}
	maxDays := f.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultDailyDays
	}

	var groups []*dayGroup
	index := make(map[string]*dayGroup)
	for _, s := range samples {
		date := s.Timestamp.In(loc).Format(dateLayout)
		g, ok := index[date]
		if !ok {
			if len(groups) == maxDays {
				continue
			}
			g = &dayGroup{date: date}
			index[date] = g
			groups = append(groups, g)
		}
		g.samples = append(g.samples, s)
	}

	daily := make([]models.DailyEntry, 0, len(groups))
	for _, g := range groups {
		daily = append(daily, summarizeDay(g, sunrise, sunset))
	}
	return daily
}

// Temperatures are rounded after aggregation so min <= mean <= max still holds.
func summarizeDay(g *dayGroup, sunrise, sunset int64) models.DailyEntry {
	first := g.samples[0]
	maxTemp, minTemp := first.TempC, first.TempC
	var sumTemp, sumHumidity, sumWind, sumPressure, sumPop float64

	for _, s := range g.samples {
		if s.TempC > maxTemp {
			maxTemp = s.TempC
		}
		if s.TempC < minTemp {
			minTemp = s.TempC
		}
		sumTemp += s.TempC
		sumHumidity += float64(s.HumidityPct)
		sumWind += units.MsToKmh(s.WindSpeedMs)
		sumPressure += float64(s.PressureHPa)
		sumPop += s.Pop * 100
	}

	n := float64(len(g.samples))
	return models.DailyEntry{
		Date:         g.date,
		TempMax:      units.Round(maxTemp),
		TempMin:      units.Round(minTemp),
		TempMean:     units.Round(sumTemp / n),
		HumidityPct:  units.Round(sumHumidity / n),
		WindSpeed:    units.Round(sumWind / n),
		PressureHPa:  units.Round(sumPressure / n),
		PopPct:       units.Round(sumPop / n),
		CloudsPct:    first.CloudsPct,
		Weather:      first.Weather,
		SunriseEpoch: sunrise,
		SunsetEpoch:  sunset,
	}
}
