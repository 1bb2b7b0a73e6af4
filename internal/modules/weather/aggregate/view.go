package aggregate

import (
	"math"
	"strconv"
	"time"

	"weatherdash/internal/modules/weather/alerts"
	"weatherdash/internal/modules/weather/convert"
	"weatherdash/internal/modules/weather/effects"
	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/moon"
	"weatherdash/internal/modules/weather/types"
)

type Theme string

const (
	ThemeMorning   Theme = "morning"
	ThemeNoon      Theme = "noon"
	ThemeAfternoon Theme = "afternoon"
	ThemeNight     Theme = "night"
	ThemeMidnight  Theme = "midnight"
)

// ThemeFor maps a wall-clock hour to the page theme.
func ThemeFor(hour int) Theme {
	switch {
	case hour >= 5 && hour < 11:
		return ThemeMorning
	case hour >= 11 && hour < 16:
		return ThemeNoon
	case hour >= 16 && hour < 20:
		return ThemeAfternoon
	case hour >= 23 || hour < 3:
		return ThemeMidnight
	default:
		return ThemeNight
	}
}

type CurrentView struct {
	Temperature int                  `json:"temperature"`
	TempMax     int                  `json:"tempMax"`
	TempMin     int                  `json:"tempMin"`
	WeatherCode int                  `json:"weatherCode"`
	Description string               `json:"description"`
	Icon        convert.IconCategory `json:"icon"`
	IsDay       bool                 `json:"isDay"`
}

type DetailsView struct {
	UVIndex       float64 `json:"uvIndex"`
	UVText        string  `json:"uvText"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	WindCardinal  string  `json:"windCardinal"`
	WindGust      float64 `json:"windGust"`
	Humidity      int     `json:"humidity"`
	DewPoint      int     `json:"dewPoint"`
	Pressure      int     `json:"pressure"`
	AQI           string  `json:"aqi"`
	AQIText       string  `json:"aqiText"`
}

type AstroView struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
	Moonset string `json:"moonset"`
}

type MoonView struct {
	moon.Phase
	Name string `json:"name"`
}

type HourView struct {
	Label       string               `json:"label"`
	Icon        convert.IconCategory `json:"icon"`
	Temperature int                  `json:"temperature"`
	Gust        int                  `json:"gust"`
	Current     bool                 `json:"current,omitempty"`
}

type DayGroup struct {
	Title string     `json:"title"`
	Hours []HourView `json:"hours"`
}

type DailyRow struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Icon        convert.IconCategory `json:"icon"`
	TempMax     int                  `json:"tempMax"`
	TempMin     int                  `json:"tempMin"`
	UVMax       float64              `json:"uvMax"`
}

// ViewModel is everything the dashboard shows for one lookup, already
// converted to the preferred unit and language.
type ViewModel struct {
	Place      string         `json:"place"`
	Language   types.Language `json:"language"`
	Unit       types.Unit     `json:"unit"`
	UnitSymbol string         `json:"unitSymbol"`
	Timezone   string         `json:"timezone"`
	HourIndex  int            `json:"hourIndex"`
	Current    CurrentView    `json:"current"`
	Details    DetailsView    `json:"details"`
	Astro      AstroView      `json:"astro"`
	Moon       MoonView       `json:"moon"`
	Alerts     []alerts.Alert `json:"alerts"`
	Hourly     []DayGroup     `json:"hourly"`
	Daily      []DailyRow     `json:"daily"`
	Effects    effects.Plan   `json:"effects"`
	Theme      Theme          `json:"theme"`
}

// Project builds the view model. now is the viewer's clock; its hour picks the
// theme and its date the moon phase.
func Project(res Result, place string, prefs types.Preferences, tr *locale.Translation, now time.Time) ViewModel {
	w := res.Weather
	unit := prefs.Unit
	idx := CurrentHourIndex(w.Hourly.Timestamps, now, w.UTCOffsetSeconds)
	zone := time.FixedZone(w.Timezone, w.UTCOffsetSeconds)

	vm := ViewModel{
		Place:      place,
		Language:   tr.Language,
		Unit:       unit,
		UnitSymbol: convert.UnitSymbol(unit),
		Timezone:   w.Timezone,
		HourIndex:  idx,
		Current: CurrentView{
			Temperature: convert.Temperature(w.Current.TemperatureC, unit),
			TempMax:     convert.Temperature(at(w.Daily.TempMaxC, 0), unit),
			TempMin:     convert.Temperature(at(w.Daily.TempMinC, 0), unit),
			WeatherCode: w.Current.WeatherCode,
			Description: tr.Weather(w.Current.WeatherCode),
			Icon:        convert.IconCategoryOf(w.Current.WeatherCode, w.Current.IsDay),
			IsDay:       w.Current.IsDay,
		},
		Astro: AstroView{
			Sunrise: convert.FormatClock(atString(w.Daily.Sunrise, 0)),
			Sunset:  convert.FormatClock(atString(w.Daily.Sunset, 0)),
			Moonset: convert.FormatClock(atString(w.Daily.Moonset, 0)),
		},
		Effects: effects.PlanFor(w.Current.WeatherCode),
		Theme:   ThemeFor(now.Hour()),
	}

	uv := at(w.Daily.UVIndexMax, 0)
	gust := at(w.Hourly.WindGusts, idx)
	vm.Details = DetailsView{
		UVIndex:       uv,
		UVText:        tr.UV(convert.UVCategoryOf(uv)),
		WindSpeed:     w.Current.WindSpeed,
		WindDirection: w.Current.WindDirectionDeg,
		WindCardinal:  convert.CardinalDirection(w.Current.WindDirectionDeg),
		WindGust:      gust,
		Humidity:      int(math.Round(at(w.Hourly.RelativeHumidity, idx))),
		DewPoint:      convert.Temperature(at(w.Hourly.DewPointC, idx), unit),
		Pressure:      int(math.Round(at(w.Hourly.SurfacePressure, idx))),
		AQI:           "N/A",
		AQIText:       tr.Labels.Unknown,
	}
	if aq := res.AirQuality; aq.Known() {
		vm.Details.AQI = strconv.Itoa(int(math.Round(*aq.USAQI)))
		vm.Details.AQIText = tr.AQI(convert.AQICategoryOf(*aq.USAQI))
	}

	phase := moon.ForDate(now)
	vm.Moon = MoonView{Phase: phase, Name: tr.MoonPhase(phase.Index)}

	vm.Alerts = alerts.Evaluate(alerts.Input{
		TemperatureC: w.Current.TemperatureC,
		WeatherCode:  w.Current.WeatherCode,
		DailyUVMax:   uv,
		GustKmh:      gust,
	}, tr.Warnings)

	vm.Hourly = groupHours(w.Hourly, idx, unit, tr, zone)
	vm.Daily = dailyRows(w.Daily, unit, tr, zone)
	return vm
}

// groupHours splits the hourly series by local calendar day, keeping order.
func groupHours(h types.HourlySeries, current int, unit types.Unit, tr *locale.Translation, zone *time.Location) []DayGroup {
	var groups []DayGroup
	lastDay := ""
	for i, ts := range h.Timestamps {
		t, ok := convert.ParseLocal(ts, zone)
		if !ok {
			continue
		}
		day := t.Format(time.DateOnly)
		if day != lastDay {
			groups = append(groups, DayGroup{Title: tr.DayTitle(t)})
			lastDay = day
		}
		hour := t.Hour()
		g := &groups[len(groups)-1]
		g.Hours = append(g.Hours, HourView{
			Label:       tr.HourLabel(t),
			Icon:        convert.IconCategoryOf(at(h.WeatherCode, i), hour >= 6 && hour < 21),
			Temperature: convert.Temperature(at(h.TemperatureC, i), unit),
			Gust:        int(math.Round(at(h.WindGusts, i))),
			Current:     i == current,
		})
	}
	return groups
}

func dailyRows(d types.DailySeries, unit types.Unit, tr *locale.Translation, zone *time.Location) []DailyRow {
	rows := make([]DailyRow, 0, len(d.Dates))
	for i, ds := range d.Dates {
		t, err := time.ParseInLocation(time.DateOnly, ds, zone)
		if err != nil {
			continue
		}
		code := at(d.WeatherCode, i)
		rows = append(rows, DailyRow{
			Title:       tr.DayTitle(t),
			Description: tr.Weather(code),
			Icon:        convert.IconCategoryOf(code, true),
			TempMax:     convert.Temperature(at(d.TempMaxC, i), unit),
			TempMin:     convert.Temperature(at(d.TempMinC, i), unit),
			UVMax:       at(d.UVIndexMax, i),
		})
	}
	return rows
}

func at[T int | float64](s []T, i int) T {
	if i < 0 || i >= len(s) {
		var zero T
		return zero
	}
	return s[i]
}

func atString(s []string, i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}
