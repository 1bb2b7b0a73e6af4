package types

import (
	"fmt"
	"strings"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a named location as returned by the geocoding lookup.
type Place struct {
	Name        string      `json:"name"`
	Country     string      `json:"country,omitempty"`
	CountryCode string      `json:"countryCode,omitempty"`
	Admin1      string      `json:"admin1,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
	LanguageSerbian Language = "sr"
)

// Languages lists the supported locales in selector order.
var Languages = []Language{LanguageEnglish, LanguageGerman, LanguageSerbian}

func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish, true
	case LanguageGerman:
		return LanguageGerman, true
	case LanguageSerbian:
		return LanguageSerbian, true
	}
	return LanguageEnglish, false
}

type Unit string

const (
	UnitCelsius    Unit = "c"
	UnitFahrenheit Unit = "f"
	UnitKelvin     Unit = "k"
)

var Units = []Unit{UnitCelsius, UnitFahrenheit, UnitKelvin}

func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return UnitCelsius, true
	case "f", "fahrenheit":
		return UnitFahrenheit, true
	case "k", "kelvin":
		return UnitKelvin, true
	}
	return UnitCelsius, false
}

// LocaleGuess is the language derived from the country of a resolved location.
type LocaleGuess struct {
	Language    Language `json:"language"`
	CountryCode string   `json:"countryCode,omitempty"`
}

// GuessLocale maps RS to sr and DE to de; any other country maps to en.
// An empty country code keeps the current language.
func GuessLocale(countryCode string, current Language) LocaleGuess {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	switch cc {
	case "":
		return LocaleGuess{Language: current}
	case "RS":
		return LocaleGuess{Language: LanguageSerbian, CountryCode: cc}
	case "DE":
		return LocaleGuess{Language: LanguageGerman, CountryCode: cc}
	default:
		return LocaleGuess{Language: LanguageEnglish, CountryCode: cc}
	}
}

type Preferences struct {
	Language Language `json:"language"`
	Unit     Unit     `json:"unit"`
}

func DefaultPreferences() Preferences {
	return Preferences{Language: LanguageEnglish, Unit: UnitCelsius}
}

type CurrentConditions struct {
	TemperatureC     float64 `json:"temperature"`
	WeatherCode      int     `json:"weathercode"`
	WindSpeed        float64 `json:"windspeed"`
	WindDirectionDeg float64 `json:"winddirection"`
	IsDay            bool    `json:"isDay"`
}

type HourlySeries struct {
	Timestamps       []string  `json:"time"`
	TemperatureC     []float64 `json:"temperature_2m"`
	WeatherCode      []int     `json:"weathercode"`
	WindGusts        []float64 `json:"windgusts_10m"`
	RelativeHumidity []float64 `json:"relativehumidity_2m"`
	DewPointC        []float64 `json:"dewpoint_2m"`
	SurfacePressure  []float64 `json:"surface_pressure"`
	WindDirection    []float64 `json:"winddirection_10m"`
}

type DailySeries struct {
	Dates       []string  `json:"time"`
	WeatherCode []int     `json:"weathercode"`
	TempMaxC    []float64 `json:"temperature_2m_max"`
	TempMinC    []float64 `json:"temperature_2m_min"`
	Sunrise     []string  `json:"sunrise"`
	Sunset      []string  `json:"sunset"`
	Moonset     []string  `json:"moonset"`
	UVIndexMax  []float64 `json:"uv_index_max"`
}

type WeatherSnapshot struct {
	Current          CurrentConditions `json:"current"`
	Hourly           HourlySeries      `json:"hourly"`
	Daily            DailySeries       `json:"daily"`
	Timezone         string            `json:"timezone"`
	UTCOffsetSeconds int               `json:"utcOffsetSeconds"`
}

// Validate checks that every hourly and daily series has the same length as
// its timestamp series. Moonset is optional and may be empty.
func (s WeatherSnapshot) Validate() error {
	n := len(s.Hourly.Timestamps)
	hourly := map[string]int{
		"temperature_2m":      len(s.Hourly.TemperatureC),
		"weathercode":         len(s.Hourly.WeatherCode),
		"windgusts_10m":       len(s.Hourly.WindGusts),
		"relativehumidity_2m": len(s.Hourly.RelativeHumidity),
		"dewpoint_2m":         len(s.Hourly.DewPointC),
		"surface_pressure":    len(s.Hourly.SurfacePressure),
		"winddirection_10m":   len(s.Hourly.WindDirection),
	}
	for field, l := range hourly {
		if l != n {
			return fmt.Errorf("hourly %s has %d values, want %d", field, l, n)
		}
	}

	d := len(s.Daily.WeatherCode)
	daily := map[string]int{
		"temperature_2m_max": len(s.Daily.TempMaxC),
		"temperature_2m_min": len(s.Daily.TempMinC),
		"sunrise":            len(s.Daily.Sunrise),
		"sunset":             len(s.Daily.Sunset),
		"uv_index_max":       len(s.Daily.UVIndexMax),
	}
	if len(s.Daily.Moonset) > 0 {
		daily["moonset"] = len(s.Daily.Moonset)
	}
	for field, l := range daily {
		if l != d {
			return fmt.Errorf("daily %s has %d values, want %d", field, l, d)
		}
	}
	return nil
}

// AirQualitySnapshot carries the current US AQI; nil means unknown.
type AirQualitySnapshot struct {
	USAQI *float64 `json:"usAqi"`
}

func (a AirQualitySnapshot) Known() bool {
	return a.USAQI != nil
}
