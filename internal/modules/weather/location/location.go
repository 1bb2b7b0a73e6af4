// Package location resolves where the dashboard user is. Strategies are tried
// in order; each failure falls through to the next one and only the default
// city lookup at the end is allowed to fail the resolution.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"weatherdash/internal/modules/weather/types"
)

var (
	// ErrUnavailable marks a strategy that cannot run for this request.
	ErrUnavailable = errors.New("location strategy unavailable")
	// ErrLocationUnavailable is returned when the default city cannot be resolved either.
	ErrLocationUnavailable = errors.New("location could not be resolved")
)

// Request carries what the caller knows about the user.
type Request struct {
	// Device is nil when the browser has no geolocation or the user denied it.
	Device   Positioner
	ClientIP string
}

// Candidate is a strategy's answer.
type Candidate struct {
	Coordinates types.Coordinates
	DisplayName string
	CountryCode string
}

type Resolution struct {
	Coordinates types.Coordinates `json:"coordinates"`
	Locale      types.LocaleGuess `json:"locale"`
	DisplayName string            `json:"displayName"`
	Source      string            `json:"source"`
}

type Strategy interface {
	Name() string
	Locate(ctx context.Context, req Request) (Candidate, error)
}

type Chain struct {
	strategies []Strategy
	fallback   Strategy
	logger     *slog.Logger
}

// NewChain builds a chain that tries strategies in order and then fallback.
func NewChain(logger *slog.Logger, fallback Strategy, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{strategies: strategies, fallback: fallback, logger: logger}
}

// Resolve runs the chain. current is the language in effect, kept when the
// winning strategy yields no country code.
func (c *Chain) Resolve(ctx context.Context, req Request, current types.Language) (Resolution, error) {
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		cand, err := s.Locate(ctx, req)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				c.logger.Debug("location strategy skipped", "strategy", s.Name())
			} else {
				c.logger.Warn("location strategy failed", "strategy", s.Name(), "error", err)
			}
			continue
		}
		c.logger.Info("location resolved", "strategy", s.Name(), "place", cand.DisplayName, "country", cand.CountryCode)
		return resolution(s, cand, current), nil
	}

	cand, err := c.fallback.Locate(ctx, req)
	if err != nil {
		c.logger.Error("default location failed", "strategy", c.fallback.Name(), "error", err)
		return Resolution{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	c.logger.Info("location resolved", "strategy", c.fallback.Name(), "place", cand.DisplayName, "country", cand.CountryCode)
	return resolution(c.fallback, cand, current), nil
}

func resolution(s Strategy, cand Candidate, current types.Language) Resolution {
	return Resolution{
		Coordinates: cand.Coordinates,
		Locale:      types.GuessLocale(cand.CountryCode, current),
		DisplayName: cand.DisplayName,
		Source:      s.Name(),
	}
}
