package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"weatherdash/internal/modules/weather/types"
)

const (
	ForecastDays = 9

	hourlyFields = "temperature_2m,weathercode,windgusts_10m,relativehumidity_2m,dewpoint_2m,surface_pressure,winddirection_10m"
	dailyFields  = "weathercode,temperature_2m_max,temperature_2m_min,sunrise,sunset,moonset,uv_index_max"
)

type forecastResponse struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	CurrentWeather   struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
		IsDay         int     `json:"is_day"`
	} `json:"current_weather"`
	Hourly types.HourlySeries `json:"hourly"`
	Daily  types.DailySeries  `json:"daily"`
}

func coordParams(c types.Coordinates) map[string]string {
	return map[string]string{
		"latitude":  strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(c.Longitude, 'f', -1, 64),
		"timezone":  "auto",
	}
}

type ForecastClient struct {
	client *resty.Client
	url    string
}

func NewForecastClient(client *resty.Client, url string) *ForecastClient {
	return &ForecastClient{client: client, url: url}
}

// Fetch requests current conditions plus nine days of hourly and daily detail
// in the location's own timezone.
func (f *ForecastClient) Fetch(ctx context.Context, c types.Coordinates) (types.WeatherSnapshot, error) {
	params := coordParams(c)
	params["current_weather"] = "true"
	params["hourly"] = hourlyFields
	params["daily"] = dailyFields
	params["forecast_days"] = strconv.Itoa(ForecastDays)

	resp, err := f.client.R().SetContext(ctx).SetQueryParams(params).Get(f.url)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: forecast: %v", ErrUpstream, err)
	}
	var out forecastResponse
	if err := decode(resp, &out); err != nil {
		return types.WeatherSnapshot{}, err
	}
	snap := types.WeatherSnapshot{
		Current: types.CurrentConditions{
			TemperatureC:     out.CurrentWeather.Temperature,
			WeatherCode:      out.CurrentWeather.WeatherCode,
			WindSpeed:        out.CurrentWeather.WindSpeed,
			WindDirectionDeg: out.CurrentWeather.WindDirection,
			IsDay:            out.CurrentWeather.IsDay == 1,
		},
		Hourly:           out.Hourly,
		Daily:            out.Daily,
		Timezone:         out.Timezone,
		UTCOffsetSeconds: out.UTCOffsetSeconds,
	}
	if err := snap.Validate(); err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: forecast: %v", ErrUpstream, err)
	}
	return snap, nil
}

type airQualityResponse struct {
	Current struct {
		USAQI *float64 `json:"us_aqi"`
	} `json:"current"`
}

type AirQualityClient struct {
	client *resty.Client
	url    string
}

func NewAirQualityClient(client *resty.Client, url string) *AirQualityClient {
	return &AirQualityClient{client: client, url: url}
}

func (a *AirQualityClient) Fetch(ctx context.Context, c types.Coordinates) (types.AirQualitySnapshot, error) {
	params := coordParams(c)
	params["current"] = "us_aqi"

	resp, err := a.client.R().SetContext(ctx).SetQueryParams(params).Get(a.url)
	if err != nil {
		return types.AirQualitySnapshot{}, fmt.Errorf("%w: air quality: %v", ErrUpstream, err)
	}
	var out airQualityResponse
	if err := decode(resp, &out); err != nil {
		return types.AirQualitySnapshot{}, err
	}
	return types.AirQualitySnapshot{USAQI: out.Current.USAQI}, nil
}
