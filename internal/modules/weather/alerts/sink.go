package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"weatherdash/internal/modules/weather/types"
)

// Event is the payload published for one committed lookup.
type Event struct {
	Place       string            `json:"place"`
	CountryCode string            `json:"country_code,omitempty"`
	Coordinates types.Coordinates `json:"coordinates"`
	Alerts      []Alert           `json:"alerts"`
	IssuedAt    time.Time         `json:"issued_at"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Sink forwards alert events to an external system.
type Sink interface {
	Name() string
	PublishAlerts(ctx context.Context, ev Event) error
}

// Publish hands ev to every sink. Events without alerts are not published.
// A failing sink does not stop the others; the joined error is returned.
func Publish(ctx context.Context, sinks []Sink, ev Event, logger *slog.Logger) error {
	if len(ev.Alerts) == 0 || len(sinks) == 0 {
		return nil
	}
	var errs []error
	for _, s := range sinks {
		if err := s.PublishAlerts(ctx, ev); err != nil {
			logger.Warn("publish alerts failed", "sink", s.Name(), "place", ev.Place, "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Debug("published alerts", "sink", s.Name(), "place", ev.Place, "count", len(ev.Alerts))
	}
	return errors.Join(errs...)
}
