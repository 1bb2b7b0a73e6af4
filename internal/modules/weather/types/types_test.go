package types

import (
	"strings"
	"testing"
)

func TestGuessLocale(t *testing.T) {
	tests := []struct {
		name    string
		country string
		current Language
		want    Language
	}{
		{name: "serbia", country: "RS", current: LanguageEnglish, want: LanguageSerbian},
		{name: "germany lower case", country: "de", current: LanguageEnglish, want: LanguageGerman},
		{name: "france", country: "FR", current: LanguageGerman, want: LanguageEnglish},
		{name: "empty keeps current", country: "", current: LanguageSerbian, want: LanguageSerbian},
		{name: "whitespace keeps current", country: "  ", current: LanguageGerman, want: LanguageGerman},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuessLocale(tt.country, tt.current)
			if got.Language != tt.want {
				t.Errorf("GuessLocale(%q, %q).Language = %q; want %q", tt.country, tt.current, got.Language, tt.want)
			}
		})
	}
}

func TestParseUnitAndLanguage(t *testing.T) {
	if u, ok := ParseUnit(" F "); !ok || u != UnitFahrenheit {
		t.Errorf("ParseUnit(F) = %q, %v; want f, true", u, ok)
	}
	if u, ok := ParseUnit("rankine"); ok || u != UnitCelsius {
		t.Errorf("ParseUnit(rankine) = %q, %v; want c, false", u, ok)
	}
	if l, ok := ParseLanguage("SR"); !ok || l != LanguageSerbian {
		t.Errorf("ParseLanguage(SR) = %q, %v; want sr, true", l, ok)
	}
	if l, ok := ParseLanguage("fr"); ok || l != LanguageEnglish {
		t.Errorf("ParseLanguage(fr) = %q, %v; want en, false", l, ok)
	}
}

func validSnapshot() WeatherSnapshot {
	return WeatherSnapshot{
		Hourly: HourlySeries{
			Timestamps:       []string{"2025-01-01T00:00", "2025-01-01T01:00"},
			TemperatureC:     []float64{1, 2},
			WeatherCode:      []int{0, 1},
			WindGusts:        []float64{10, 20},
			RelativeHumidity: []float64{80, 81},
			DewPointC:        []float64{-1, -2},
			SurfacePressure:  []float64{1010, 1011},
			WindDirection:    []float64{90, 180},
		},
		Daily: DailySeries{
			WeatherCode: []int{3},
			TempMaxC:    []float64{5},
			TempMinC:    []float64{-3},
			Sunrise:     []string{"2025-01-01T07:00"},
			Sunset:      []string{"2025-01-01T16:00"},
			UVIndexMax:  []float64{1},
		},
	}
}

func TestWeatherSnapshot_Validate(t *testing.T) {
	t.Run("parallel arrays", func(t *testing.T) {
		if err := validSnapshot().Validate(); err != nil {
			t.Fatalf("Validate() = %v; want nil", err)
		}
	})

	t.Run("short hourly series", func(t *testing.T) {
		s := validSnapshot()
		s.Hourly.RelativeHumidity = s.Hourly.RelativeHumidity[:1]
		err := s.Validate()
		if err == nil {
			t.Fatal("Validate() = nil; want error")
		}
		if !strings.Contains(err.Error(), "relativehumidity_2m") {
			t.Errorf("err = %q; want mention of relativehumidity_2m", err.Error())
		}
	})

	t.Run("mismatched moonset", func(t *testing.T) {
		s := validSnapshot()
		s.Daily.Moonset = []string{"a", "b"}
		if err := s.Validate(); err == nil {
			t.Fatal("Validate() = nil; want error")
		}
	})
}
