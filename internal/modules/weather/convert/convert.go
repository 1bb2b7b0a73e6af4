// Package convert maps raw forecast values to display values. Every function
// here is pure.
package convert

import (
	"math"
	"time"

	"weatherdash/internal/modules/weather/types"
)

// Temperature converts degrees Celsius into the given unit, rounded half away
// from zero. Unknown units are treated as Celsius.
func Temperature(celsius float64, unit types.Unit) int {
	switch unit {
	case types.UnitFahrenheit:
		return int(math.Round(celsius*9/5 + 32))
	case types.UnitKelvin:
		return int(math.Round(celsius + 273.15))
	default:
		return int(math.Round(celsius))
	}
}

func UnitSymbol(unit types.Unit) string {
	switch unit {
	case types.UnitFahrenheit:
		return "°F"
	case types.UnitKelvin:
		return "K"
	default:
		return "°C"
	}
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CardinalDirection buckets a bearing into one of eight compass points.
func CardinalDirection(degrees float64) string {
	i := int(math.Round(degrees/45)) % 8
	if i < 0 {
		i += 8
	}
	return compassPoints[i]
}

type UVCategory string

const (
	UVLow      UVCategory = "low"
	UVModerate UVCategory = "moderate"
	UVHigh     UVCategory = "high"
	UVVeryHigh UVCategory = "veryHigh"
	UVExtreme  UVCategory = "extreme"
)

func UVCategoryOf(uv float64) UVCategory {
	switch {
	case uv <= 2:
		return UVLow
	case uv <= 5:
		return UVModerate
	case uv <= 7:
		return UVHigh
	case uv <= 10:
		return UVVeryHigh
	default:
		return UVExtreme
	}
}

type AQICategory string

const (
	AQIGood               AQICategory = "good"
	AQIModerate           AQICategory = "moderate"
	AQISensitiveUnhealthy AQICategory = "sensitiveUnhealthy"
	AQIUnhealthy          AQICategory = "unhealthy"
	AQIVeryUnhealthy      AQICategory = "veryUnhealthy"
	AQIHazardous          AQICategory = "hazardous"
)

func AQICategoryOf(aqi float64) AQICategory {
	switch {
	case aqi <= 50:
		return AQIGood
	case aqi <= 100:
		return AQIModerate
	case aqi <= 150:
		return AQISensitiveUnhealthy
	case aqi <= 200:
		return AQIUnhealthy
	case aqi <= 300:
		return AQIVeryUnhealthy
	default:
		return AQIHazardous
	}
}

type IconCategory string

const (
	IconClearDay          IconCategory = "clear-day"
	IconClearNight        IconCategory = "clear-night"
	IconPartlyCloudyDay   IconCategory = "partly-cloudy-day"
	IconPartlyCloudyNight IconCategory = "partly-cloudy-night"
	IconOvercast          IconCategory = "overcast"
	IconFog               IconCategory = "fog"
	IconRain              IconCategory = "rain"
	IconSnow              IconCategory = "snow"
	IconShowers           IconCategory = "showers"
	IconThunderstorm      IconCategory = "thunderstorm"
)

// IconCategoryOf maps a WMO weather code to an icon category. Only clear and
// partly cloudy have night variants; unknown codes render as clear.
func IconCategoryOf(code int, isDay bool) IconCategory {
	clear, partly := IconClearDay, IconPartlyCloudyDay
	if !isDay {
		clear, partly = IconClearNight, IconPartlyCloudyNight
	}
	switch {
	case code == 0:
		return clear
	case code == 1 || code == 2:
		return partly
	case code == 3:
		return IconOvercast
	case code == 45 || code == 48:
		return IconFog
	case code >= 51 && code <= 67:
		return IconRain
	case code >= 71 && code <= 77:
		return IconSnow
	case code >= 80 && code <= 82:
		return IconShowers
	case code >= 85 && code <= 86:
		return IconSnow
	case code >= 95:
		return IconThunderstorm
	default:
		return clear
	}
}

// IsPrecipitation reports whether the code describes falling precipitation
// (drizzle, rain, snow, showers, thunderstorms).
func IsPrecipitation(code int) bool {
	return (code >= 51 && code <= 67) || (code >= 71 && code <= 99)
}

const forecastLayout = "2006-01-02T15:04"

// ParseLocal parses an upstream timestamp ("2006-01-02T15:04", optionally with
// seconds) as wall-clock time in loc.
func ParseLocal(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range []string{forecastLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatClock renders an upstream timestamp as HH:MM, or "--:--" when the value
// is missing or unparseable.
func FormatClock(s string) string {
	if s == "" {
		return "--:--"
	}
	t, ok := ParseLocal(s, time.UTC)
	if !ok {
		return "--:--"
	}
	return t.Format("15:04")
}
