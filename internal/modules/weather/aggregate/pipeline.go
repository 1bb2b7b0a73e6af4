// Package aggregate fetches the forecast and air quality for a location and
// projects them into the view model the dashboard renders.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"weatherdash/internal/modules/weather/types"
)

var ErrWeatherUnavailable = errors.New("weather unavailable")

type ForecastSource interface {
	Fetch(ctx context.Context, c types.Coordinates) (types.WeatherSnapshot, error)
}

type AirQualitySource interface {
	Fetch(ctx context.Context, c types.Coordinates) (types.AirQualitySnapshot, error)
}

type Result struct {
	Weather    types.WeatherSnapshot
	AirQuality types.AirQualitySnapshot
}

type Pipeline struct {
	forecast ForecastSource
	air      AirQualitySource
	logger   *slog.Logger
}

func NewPipeline(forecast ForecastSource, air AirQualitySource, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{forecast: forecast, air: air, logger: logger}
}

// Fetch runs both requests concurrently. A forecast failure fails the lookup;
// an air quality failure leaves AQI unknown.
func (p *Pipeline) Fetch(ctx context.Context, c types.Coordinates) (Result, error) {
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := p.forecast.Fetch(gctx, c)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
		}
		res.Weather = w
		return nil
	})
	g.Go(func() error {
		aq, err := p.air.Fetch(gctx, c)
		if err != nil {
			p.logger.Warn("air quality unavailable", "lat", c.Latitude, "lon", c.Longitude, "error", err)
			return nil
		}
		res.AirQuality = aq
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return res, nil
}

const hourKeyLayout = "2006-01-02T15"

// CurrentHourIndex finds the hourly slot for now, compared at hour granularity
// in the forecast's UTC offset. No match yields 0.
func CurrentHourIndex(timestamps []string, now time.Time, utcOffsetSeconds int) int {
	key := now.In(time.FixedZone("", utcOffsetSeconds)).Format(hourKeyLayout)
	for i, ts := range timestamps {
		if len(ts) >= len(hourKeyLayout) && ts[:len(hourKeyLayout)] == key {
			return i
		}
	}
	return 0
}
