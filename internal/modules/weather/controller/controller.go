package controller

import (
	"context"
	"net/http"
	"time"

	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/location"
	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/service"
	"weatherdash/internal/modules/weather/session"
	"weatherdash/internal/modules/weather/types"
)

// WeatherService is the part of service.Service the handlers use.
type WeatherService interface {
	Session(id string) *session.State
	Translation(lang types.Language) *locale.Translation
	Preferences(ctx context.Context, sessionID string) (types.Preferences, error)
	SetPreferences(ctx context.Context, sessionID string, prefs types.Preferences) error
	Locate(ctx context.Context, sessionID string, req location.Request) (location.Resolution, error)
	LocateAndLookup(ctx context.Context, sessionID string, req location.Request) (service.Outcome, error)
	LookupCity(ctx context.Context, sessionID, name string) (service.Outcome, error)
	Lookup(ctx context.Context, sessionID string, t service.Target) (service.Outcome, error)
	Current(ctx context.Context, sessionID string) (service.Outcome, error)
	Suggest(ctx context.Context, sessionID, q string) ([]types.Place, bool, error)
	News(ctx context.Context, countryCode string) (providers.News, error)
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service            WeatherService
	geolocationTimeout time.Duration
}

func NewWeatherController(svc WeatherService, geolocationTimeout time.Duration) WeatherController {
	return &weatherControllerImpl{service: svc, geolocationTimeout: geolocationTimeout}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /api/v1/locate", c.handleLocate)
	mux.HandleFunc("GET /api/v1/weather", c.handleWeather)
	mux.HandleFunc("GET /api/v1/weather/current", c.handleCurrent)
	mux.HandleFunc("GET /api/v1/suggestions", c.handleSuggestions)
	mux.HandleFunc("GET /api/v1/news", c.handleNews)
	mux.HandleFunc("GET /api/v1/preferences", c.handleGetPreferences)
	mux.HandleFunc("PUT /api/v1/preferences", c.handlePutPreferences)
	mux.HandleFunc("GET /api/v1/effects/stream", c.handleEffectsStream)
	mux.HandleFunc("GET /partials/weather", c.handleWeatherPartial)
	mux.HandleFunc("GET /partials/suggestions", c.handleSuggestionsPartial)
	mux.HandleFunc("GET /partials/news", c.handleNewsPartial)
}
