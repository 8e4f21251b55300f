package services

import (
	"fmt"
	"strconv"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
	"github.com/bobby-s-dev/weather-app/internal/models"
)

type airQualityLevel struct {
	label       string
	color       string
	description string
}

var airQualityLevels = map[int]airQualityLevel{
	1: {"Good", "green", "Air quality is satisfactory, and air pollution poses little or no risk."},
	2: {"Fair", "yellow", "Air quality is acceptable. Unusually sensitive people should limit prolonged outdoor exertion."},
	3: {"Moderate", "orange", "Members of sensitive groups may experience health effects."},
	4: {"Poor", "red", "Everyone may begin to experience health effects."},
	5: {"Very Poor", "purple", "Health warnings of emergency conditions. Everyone is more likely to be affected."},
}

var unknownAirQuality = airQualityLevel{"Unknown", "gray", "Air quality data is not available."}

var requiredPollutants = []string{"co", "no", "no2", "o3", "so2", "pm2_5", "pm10", "nh3"}

// ClassifyAirQuality maps the provider AQI band to a label and passes the
// pollutant concentrations through. Out-of-range AQI values are Unknown.
func ClassifyAirQuality(aqi int, components map[string]float64) (*models.AirQuality, error) {
	for _, key := range requiredPollutants {
		if _, ok := components[key]; !ok {
			return nil, apperrors.Malformed("air pollution", fmt.Sprintf("missing component %q", key))
		}
	}

	level, ok := airQualityLevels[aqi]
	if !ok {
		level = unknownAirQuality
	}

	return &models.AirQuality{
		AQI:         aqi,
		Label:       level.label,
		Color:       level.color,
		Description: level.description,
		Components: models.Pollutants{
			CO:   components["co"],
			NO:   components["no"],
			NO2:  components["no2"],
			O3:   components["o3"],
			SO2:  components["so2"],
			PM25: components["pm2_5"],
			PM10: components["pm10"],
			NH3:  components["nh3"],
		},
	}, nil
}

// ClassifyUV bands a UV index. Each band includes its upper bound.
func ClassifyUV(value *float64) models.UVIndex {
	if value == nil {
		return models.UVIndex{Level: "N/A", Color: "gray", Label: "N/A"}
	}

	v := *value
	var level, color string
	switch {
	case v <= 2:
		level, color = "Low", "green"
	case v <= 5:
		level, color = "Moderate", "yellow"
	case v <= 7:
		level, color = "High", "orange"
	case v <= 10:
		level, color = "Very High", "red"
	default:
		level, color = "Extreme", "purple"
	}

	return models.UVIndex{
		Value: value,
		Level: level,
		Color: color,
		Label: fmt.Sprintf("%s (%s)", strconv.FormatFloat(v, 'f', -1, 64), level),
	}
}
