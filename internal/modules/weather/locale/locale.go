// Package locale holds the translation tables, one embedded YAML record per
// supported language. Adding a language means adding a file and a
// types.Language constant.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"weatherdash/internal/modules/weather/convert"
	"weatherdash/internal/modules/weather/types"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

type Labels struct {
	SearchPlaceholder string `yaml:"searchPlaceholder"`
	UV                string `yaml:"uv"`
	Wind              string `yaml:"wind"`
	Humidity          string `yaml:"humidity"`
	DewPoint          string `yaml:"dewPoint"`
	Pressure          string `yaml:"pressure"`
	AQI               string `yaml:"aqi"`
	MoonPhase         string `yaml:"moonPhase"`
	Illumination      string `yaml:"illumination"`
	Sunrise           string `yaml:"sunrise"`
	Sunset            string `yaml:"sunset"`
	Moonset           string `yaml:"moonset"`
	Unit              string `yaml:"unit"`
	Language          string `yaml:"language"`
	NewsTitle         string `yaml:"newsTitle"`
	GlobalNewsTitle   string `yaml:"globalNewsTitle"`
	LoadingNews       string `yaml:"loadingNews"`
	ReadMore          string `yaml:"readMore"`
	Unknown           string `yaml:"unknown"`
}

// Errors are the only texts ever shown to the user for a failure.
type Errors struct {
	Error        string `yaml:"error"`
	ErrorNews    string `yaml:"errorNews"`
	NetworkError string `yaml:"networkError"`
}

type Warnings struct {
	IcyRoads      string `yaml:"icyRoads"`
	SevereStorm   string `yaml:"severeStorm"`
	HighUV        string `yaml:"highUV"`
	HighWindGusts string `yaml:"highWindGusts"`
}

type Translation struct {
	Language     types.Language                `yaml:"-"`
	Name         string                        `yaml:"name"`
	Tag          string                        `yaml:"tag"`
	Hour12       bool                          `yaml:"hour12"`
	Labels       Labels                        `yaml:"labels"`
	Errors       Errors                        `yaml:"errors"`
	UVText       map[convert.UVCategory]string `yaml:"uv"`
	AQIText      map[convert.AQICategory]string `yaml:"aqi"`
	Warnings     Warnings                      `yaml:"warnings"`
	MoonPhases   []string                      `yaml:"moonPhases"`
	Weekdays     []string                      `yaml:"weekdays"`
	Months       []string                      `yaml:"months"`
	WeatherCodes map[int]string                `yaml:"weatherCodes"`
}

func (t *Translation) UV(c convert.UVCategory) string {
	if s, ok := t.UVText[c]; ok {
		return s
	}
	return string(c)
}

func (t *Translation) AQI(c convert.AQICategory) string {
	if s, ok := t.AQIText[c]; ok {
		return s
	}
	return string(c)
}

// Weather returns the description of a WMO code, or the "unknown" label.
func (t *Translation) Weather(code int) string {
	if s, ok := t.WeatherCodes[code]; ok {
		return s
	}
	return t.Labels.Unknown
}

func (t *Translation) MoonPhase(index int) string {
	if index < 0 || index >= len(t.MoonPhases) {
		return t.Labels.Unknown
	}
	return t.MoonPhases[index]
}

// DayTitle renders e.g. "Monday, Jan 6".
func (t *Translation) DayTitle(d time.Time) string {
	return fmt.Sprintf("%s, %s %d", t.Weekdays[d.Weekday()], t.Months[d.Month()-1], d.Day())
}

// HourLabel renders "3 PM" for 12-hour locales and "15" otherwise.
func (t *Translation) HourLabel(d time.Time) string {
	if t.Hour12 {
		return d.Format("3 PM")
	}
	return d.Format("15")
}

// NewsTitle picks the heading for the feed chosen for countryCode.
func (t *Translation) NewsTitle(countryCode string) string {
	switch strings.ToUpper(countryCode) {
	case "RS", "DE":
		return t.Labels.NewsTitle
	}
	return t.Labels.GlobalNewsTitle
}

type Catalog struct {
	byLanguage map[types.Language]*Translation
}

// Load parses the embedded translation tables. Call once during startup.
func Load() (*Catalog, error) {
	return loadFromFS(translationsFS, "translations")
}

func loadFromFS(fsys fs.FS, dir string) (*Catalog, error) {
	c := &Catalog{byLanguage: make(map[types.Language]*Translation, len(types.Languages))}
	for _, lang := range types.Languages {
		raw, err := fs.ReadFile(fsys, dir+"/"+string(lang)+".yaml")
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", lang, err)
		}
		var tr Translation
		if err := yaml.Unmarshal(raw, &tr); err != nil {
			return nil, fmt.Errorf("parse %s translations: %w", lang, err)
		}
		if err := tr.validate(); err != nil {
			return nil, fmt.Errorf("%s translations: %w", lang, err)
		}
		tr.Language = lang
		c.byLanguage[lang] = &tr
	}
	return c, nil
}

func (t *Translation) validate() error {
	switch {
	case len(t.MoonPhases) != 8:
		return fmt.Errorf("moonPhases has %d entries, want 8", len(t.MoonPhases))
	case len(t.Weekdays) != 7:
		return fmt.Errorf("weekdays has %d entries, want 7", len(t.Weekdays))
	case len(t.Months) != 12:
		return fmt.Errorf("months has %d entries, want 12", len(t.Months))
	case t.Errors.Error == "" || t.Errors.ErrorNews == "" || t.Errors.NetworkError == "":
		return fmt.Errorf("errors section is incomplete")
	}
	return nil
}

// For returns the record of lang, falling back to English.
func (c *Catalog) For(lang types.Language) *Translation {
	if tr, ok := c.byLanguage[lang]; ok {
		return tr
	}
	return c.byLanguage[types.LanguageEnglish]
}
