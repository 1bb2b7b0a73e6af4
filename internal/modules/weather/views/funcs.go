package views

import (
	"html/template"
	"net/url"
	"strconv"

	"weatherdash/internal/modules/weather/convert"
	"weatherdash/internal/modules/weather/types"
)

var weatherIcons = map[convert.IconCategory]string{
	convert.IconClearDay:          "fa-sun",
	convert.IconClearNight:        "fa-moon",
	convert.IconPartlyCloudyDay:   "fa-cloud-sun",
	convert.IconPartlyCloudyNight: "fa-cloud-moon",
	convert.IconOvercast:          "fa-cloud",
	convert.IconFog:               "fa-smog",
	convert.IconRain:              "fa-cloud-rain",
	convert.IconSnow:              "fa-snowflake",
	convert.IconShowers:           "fa-cloud-showers-heavy",
	convert.IconThunderstorm:      "fa-bolt",
}

// moonIcons is indexed by phase bucket. Waning buckets reuse the waxing icon
// mirrored in CSS.
var moonIcons = [8]string{
	"fa-circle",
	"fa-moon",
	"fa-circle-half-stroke",
	"fa-cloud-moon",
	"fa-circle",
	"fa-cloud-moon",
	"fa-circle-half-stroke",
	"fa-moon",
}

func weatherIcon(c convert.IconCategory) string {
	if icon, ok := weatherIcons[c]; ok {
		return icon
	}
	return "fa-sun"
}

func moonIcon(index int) string {
	if index < 0 || index >= len(moonIcons) {
		return "fa-circle"
	}
	return moonIcons[index]
}

// placeURL is the weather partial for a picked suggestion.
func placeURL(p types.Place) string {
	q := url.Values{}
	q.Set("name", p.Name)
	q.Set("lat", strconv.FormatFloat(p.Coordinates.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Coordinates.Longitude, 'f', -1, 64))
	if p.CountryCode != "" {
		q.Set("country", p.CountryCode)
	}
	return "/partials/weather?" + q.Encode()
}

func newsURL(countryCode string) string {
	if countryCode == "" {
		return "/partials/news"
	}
	return "/partials/news?" + url.Values{"country": {countryCode}}.Encode()
}

var funcMap = template.FuncMap{
	"weatherIcon": weatherIcon,
	"moonIcon":    moonIcon,
	"placeURL":    placeURL,
	"newsURL":     newsURL,
}
