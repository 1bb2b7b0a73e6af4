// Package service orchestrates one dashboard lookup: resolve the place, fetch
// the weather, commit it to the session and fan alerts out to the sinks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"weatherdash/internal/modules/weather/aggregate"
	"weatherdash/internal/modules/weather/alerts"
	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/location"
	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/session"
	"weatherdash/internal/modules/weather/types"
)

const (
	MinQueryLength  = 2
	SuggestionCount = 6
)

// ErrNoSnapshot is returned by Current before the session's first lookup.
var ErrNoSnapshot = errors.New("no weather committed for session")

type Resolver interface {
	Resolve(ctx context.Context, req location.Request, current types.Language) (location.Resolution, error)
}

type Geocoder interface {
	Search(ctx context.Context, name string, count int) ([]types.Place, error)
	Lookup(ctx context.Context, name string) (types.Place, error)
}

type WeatherFetcher interface {
	Fetch(ctx context.Context, c types.Coordinates) (aggregate.Result, error)
}

type NewsSource interface {
	Headlines(ctx context.Context, countryCode string) (providers.News, error)
}

type Deps struct {
	Resolver    Resolver
	Geocoder    Geocoder
	Weather     WeatherFetcher
	News        NewsSource
	Catalog     *locale.Catalog
	Preferences repository.PreferencesRepository
	Sessions    *session.Store
	Sinks       []alerts.Sink
	Logger      *slog.Logger
	Now         func() time.Time
}

type Service struct {
	resolver Resolver
	geocoder Geocoder
	weather  WeatherFetcher
	news     NewsSource
	catalog  *locale.Catalog
	prefs    repository.PreferencesRepository
	sessions *session.Store
	sinks    []alerts.Sink
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		resolver: d.Resolver,
		geocoder: d.Geocoder,
		weather:  d.Weather,
		news:     d.News,
		catalog:  d.Catalog,
		prefs:    d.Preferences,
		sessions: d.Sessions,
		sinks:    d.Sinks,
		logger:   d.Logger,
		now:      d.Now,
	}
}

// Target is a place to fetch weather for.
type Target struct {
	Name        string
	CountryCode string
	Coordinates types.Coordinates
}

// Outcome is the answer to a lookup. Stale is set when a newer lookup of the
// same session committed first; View then shows that newer lookup.
type Outcome struct {
	View        aggregate.ViewModel
	CountryCode string
	Stale       bool
}

func (s *Service) Session(id string) *session.State {
	return s.sessions.Get(id)
}

// Translation returns the record for lang.
func (s *Service) Translation(lang types.Language) *locale.Translation {
	return s.catalog.For(lang)
}

// Preferences returns the stored preferences with the session's language
// override applied. On a store error the defaults are returned with it.
func (s *Service) Preferences(ctx context.Context, sessionID string) (types.Preferences, error) {
	prefs, err := s.prefs.GetPreferences(ctx, sessionID)
	if err != nil {
		prefs = types.DefaultPreferences()
		err = fmt.Errorf("load preferences: %w", err)
	}
	if lang, ok := s.sessions.Get(sessionID).Language(); ok {
		prefs.Language = lang
	}
	return prefs, err
}

// SetPreferences stores an explicit user selection.
func (s *Service) SetPreferences(ctx context.Context, sessionID string, prefs types.Preferences) error {
	if err := s.prefs.SavePreferences(ctx, sessionID, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	s.sessions.Get(sessionID).SetLanguage(prefs.Language)
	return nil
}

// Locate runs the resolution chain. The guessed language becomes the
// session's language without being persisted.
func (s *Service) Locate(ctx context.Context, sessionID string, req location.Request) (location.Resolution, error) {
	prefs, err := s.Preferences(ctx, sessionID)
	if err != nil {
		s.logger.Warn("preferences unavailable, using defaults", "session", sessionID, "error", err)
	}
	res, err := s.resolver.Resolve(ctx, req, prefs.Language)
	if err != nil {
		return location.Resolution{}, err
	}
	s.sessions.Get(sessionID).SetLanguage(res.Locale.Language)
	return res, nil
}

// LocateAndLookup resolves the user's location and fetches its weather.
func (s *Service) LocateAndLookup(ctx context.Context, sessionID string, req location.Request) (Outcome, error) {
	res, err := s.Locate(ctx, sessionID, req)
	if err != nil {
		return Outcome{}, err
	}
	return s.Lookup(ctx, sessionID, Target{
		Name:        res.DisplayName,
		CountryCode: res.Locale.CountryCode,
		Coordinates: res.Coordinates,
	})
}

// LookupCity geocodes name and fetches its weather.
func (s *Service) LookupCity(ctx context.Context, sessionID, name string) (Outcome, error) {
	place, err := s.geocoder.Lookup(ctx, strings.TrimSpace(name))
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup %q: %w", name, err)
	}
	return s.Lookup(ctx, sessionID, Target{
		Name:        place.Name,
		CountryCode: place.CountryCode,
		Coordinates: place.Coordinates,
	})
}

// Lookup fetches the weather for t under the session's sequence guard. Only
// a committed lookup restarts effects and publishes alerts.
func (s *Service) Lookup(ctx context.Context, sessionID string, t Target) (Outcome, error) {
	state := s.sessions.Get(sessionID)
	seq := state.Begin()

	res, err := s.weather.Fetch(ctx, t.Coordinates)
	if err != nil {
		s.logger.Error("weather lookup failed", "session", sessionID, "place", t.Name, "seq", seq, "error", err)
		return Outcome{}, err
	}

	now := s.now()
	snap := session.Snapshot{
		Place:       t.Name,
		CountryCode: t.CountryCode,
		Coordinates: t.Coordinates,
		Result:      res,
		FetchedAt:   now,
	}
	if !state.Commit(seq, snap) {
		s.logger.Info("stale lookup discarded", "session", sessionID, "place", t.Name, "seq", seq)
		latest, _ := state.Last()
		view := s.project(ctx, sessionID, latest, now)
		return Outcome{View: view, CountryCode: latest.CountryCode, Stale: true}, nil
	}

	view := s.project(ctx, sessionID, snap, now)
	state.ApplyEffects(view.Effects)
	s.logger.Info("lookup committed", "session", sessionID, "place", t.Name, "seq", seq, "alerts", len(view.Alerts))

	ev := alerts.Event{
		Place:       t.Name,
		CountryCode: t.CountryCode,
		Coordinates: t.Coordinates,
		Alerts:      view.Alerts,
		IssuedAt:    now.UTC(),
	}
	// Sink failures are logged by Publish and never fail the lookup.
	_ = alerts.Publish(ctx, s.sinks, ev, s.logger)

	return Outcome{View: view, CountryCode: t.CountryCode}, nil
}

// Current re-projects the last committed lookup with the current preferences.
func (s *Service) Current(ctx context.Context, sessionID string) (Outcome, error) {
	snap, ok := s.sessions.Get(sessionID).Last()
	if !ok {
		return Outcome{}, ErrNoSnapshot
	}
	view := s.project(ctx, sessionID, snap, s.now())
	return Outcome{View: view, CountryCode: snap.CountryCode}, nil
}

// project falls back to default preferences when the store is unreachable.
func (s *Service) project(ctx context.Context, sessionID string, snap session.Snapshot, now time.Time) aggregate.ViewModel {
	prefs, err := s.Preferences(ctx, sessionID)
	if err != nil {
		s.logger.Warn("preferences unavailable, using defaults", "session", sessionID, "error", err)
	}
	return aggregate.Project(snap.Result, snap.Place, prefs, s.catalog.For(prefs.Language), now)
}

// Suggest returns up to SuggestionCount places for q after the session's
// debounce. ok is false when a newer call superseded this one.
func (s *Service) Suggest(ctx context.Context, sessionID, q string) (places []types.Place, ok bool, err error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, true, nil
	}
	if !s.sessions.Get(sessionID).Debouncer().Wait(ctx) {
		return nil, false, nil
	}
	places, err = s.geocoder.Search(ctx, q, SuggestionCount)
	if err != nil {
		return nil, true, fmt.Errorf("suggest %q: %w", q, err)
	}
	return places, true, nil
}

// News returns the headlines for countryCode.
func (s *Service) News(ctx context.Context, countryCode string) (providers.News, error) {
	news, err := s.news.Headlines(ctx, countryCode)
	if err != nil {
		s.logger.Warn("news unavailable", "country", countryCode, "error", err)
		return providers.News{}, err
	}
	return news, nil
}
