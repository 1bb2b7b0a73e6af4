// Package alerts evaluates the warning rules for a resolved lookup.
package alerts

import (
	"strconv"

	"weatherdash/internal/modules/weather/convert"
	"weatherdash/internal/modules/weather/locale"
)

type Kind string

const (
	KindIcyRoads      Kind = "icyRoads"
	KindSevereStorm   Kind = "severeStorm"
	KindHighUV        Kind = "highUV"
	KindHighWindGusts Kind = "highWindGusts"
)

const (
	icyMaxTempC   = 2.0
	stormMinCode  = 95
	highUVMin     = 8.0
	windGustLimit = 50.0
)

type Alert struct {
	Kind    Kind   `json:"kind"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// Input holds the values the rules look at. GustKmh is the hourly gust at the
// resolved current-hour index.
type Input struct {
	TemperatureC float64
	WeatherCode  int
	DailyUVMax   float64
	GustKmh      float64
}

// Evaluate runs every rule and returns the matches in icy, storm, UV, wind
// order. Rules are independent; nothing is deduplicated.
func Evaluate(in Input, texts locale.Warnings) []Alert {
	var out []Alert
	if in.TemperatureC <= icyMaxTempC && convert.IsPrecipitation(in.WeatherCode) {
		out = append(out, Alert{Kind: KindIcyRoads, Color: "#00d2ff", Icon: "fa-snowflake", Message: texts.IcyRoads})
	}
	if in.WeatherCode >= stormMinCode {
		out = append(out, Alert{Kind: KindSevereStorm, Color: "#ff4757", Icon: "fa-bolt", Message: texts.SevereStorm})
	}
	if in.DailyUVMax >= highUVMin {
		out = append(out, Alert{Kind: KindHighUV, Color: "#ffa502", Icon: "fa-sun", Message: texts.HighUV})
	}
	if in.GustKmh > windGustLimit {
		out = append(out, Alert{
			Kind:    KindHighWindGusts,
			Color:   "#fab1a0",
			Icon:    "fa-wind",
			Message: texts.HighWindGusts + ": " + strconv.FormatFloat(in.GustKmh, 'f', -1, 64) + " km/h",
		})
	}
	return out
}

func Kinds(list []Alert) []Kind {
	kinds := make([]Kind, len(list))
	for i, a := range list {
		kinds[i] = a.Kind
	}
	return kinds
}
