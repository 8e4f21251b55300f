package models

import (
	"time"
)

type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Location is a resolved place; Name and Country are empty for raw coordinates.
type Location struct {
	Coordinates
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

type WeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type CurrentConditions struct {
	LocationName   string           `json:"location_name"`
	CountryCode    string           `json:"country_code"`
	TempC          float64          `json:"temp"`
	FeelsLikeC     float64          `json:"feels_like"`
	TempMinC       float64          `json:"temp_min"`
	TempMaxC       float64          `json:"temp_max"`
	HumidityPct    int              `json:"humidity_pct"`
	PressureHPa    int              `json:"pressure_hpa"`
	WindSpeedKmh   int              `json:"wind_speed"`
	CloudsPct      int              `json:"clouds_pct"`
	Weather        WeatherCondition `json:"weather"`
	SunriseEpoch   int64            `json:"sunrise"`
	SunsetEpoch    int64            `json:"sunset"`
	VisibilityM    *int             `json:"visibility_m,omitempty"`
	TimezoneOffset int              `json:"timezone_offset"`
	ObservedAt     time.Time        `json:"observed_at"`
}

// ForecastSample is one 3-hour step of the provider forecast, in provider units.
type ForecastSample struct {
	Timestamp   time.Time        `json:"timestamp"`
	TempC       float64          `json:"temp_c"`
	FeelsLikeC  float64          `json:"feels_like_c"`
	TempMinC    float64          `json:"temp_min_c"`
	TempMaxC    float64          `json:"temp_max_c"`
	HumidityPct int              `json:"humidity_pct"`
	PressureHPa int              `json:"pressure_hpa"`
	WindSpeedMs float64          `json:"wind_speed_ms"`
	CloudsPct   int              `json:"clouds_pct"`
	Weather     WeatherCondition `json:"weather"`
	Pop         float64          `json:"pop"`
	VisibilityM *int             `json:"visibility_m,omitempty"`
}

type HourlyEntry struct {
	Time         time.Time `json:"time"`
	Temp         int       `json:"temp"`
	FeelsLike    int       `json:"feels_like"`
	Icon         string    `json:"icon"`
	Description  string    `json:"description"`
	HumidityPct  int       `json:"humidity_pct"`
	WindSpeed    int       `json:"wind_speed"`
	PressureHPa  int       `json:"pressure_hpa"`
	PopPct       int       `json:"pop_pct"`
	VisibilityKm *int      `json:"visibility_km"`
}

type DailyEntry struct {
	Date         string           `json:"date"`
	TempMax      int              `json:"temp_max"`
	TempMin      int              `json:"temp_min"`
	TempMean     int              `json:"temp_mean"`
	HumidityPct  int              `json:"humidity_pct"`
	WindSpeed    int              `json:"wind_speed"`
	PressureHPa  int              `json:"pressure_hpa"`
	PopPct       int              `json:"pop_pct"`
	CloudsPct    int              `json:"clouds_pct"`
	Weather      WeatherCondition `json:"weather"`
	SunriseEpoch int64            `json:"sunrise"`
	SunsetEpoch  int64            `json:"sunset"`
}

// Pollutants are concentrations in μg/m³.
type Pollutants struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

// AirQualityRaw is the provider's first air pollution reading.
// Components is nil when the provider omitted it.
type AirQualityRaw struct {
	AQI        int
	Components map[string]float64
}

type AirQuality struct {
	AQI         int        `json:"aqi"`
	Label       string     `json:"label"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	Components  Pollutants `json:"components"`
}

type UVIndex struct {
	Value *float64 `json:"value"`
	Level string   `json:"level"`
	Color string   `json:"color"`
	Label string   `json:"label"`
}

// RawWeather is everything fetched for one set of coordinates. UV and Air
// are nil when their advisory calls failed.
type RawWeather struct {
	Current  *CurrentConditions
	Forecast []ForecastSample
	UV       *float64
	Air      *AirQualityRaw
}

type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ViewModel is the aggregate handed to presentation for one completed search.
// It is never mutated after construction; conversions return a copy.
type ViewModel struct {
	ID         string            `json:"id"`
	Query      string            `json:"query"`
	Location   Location          `json:"location"`
	Current    CurrentConditions `json:"current"`
	Hourly     []HourlyEntry     `json:"hourly"`
	Daily      []DailyEntry      `json:"daily"`
	AirQuality *AirQuality       `json:"air_quality"`
	UV         UVIndex           `json:"uv"`
	Units      UnitSystem        `json:"units"`
	FetchedAt  time.Time         `json:"fetched_at"`
}
