package controller

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"weatherdash/internal/modules/weather/aggregate"
	"weatherdash/internal/modules/weather/convert"
	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/service"
	"weatherdash/internal/modules/weather/types"
	"weatherdash/internal/modules/weather/views"
	"weatherdash/internal/utils"
)

type weatherResponse struct {
	Weather     aggregate.ViewModel `json:"weather"`
	CountryCode string              `json:"countryCode,omitempty"`
	Stale       bool                `json:"stale"`
}

func newWeatherResponse(out service.Outcome) weatherResponse {
	return weatherResponse{Weather: out.View, CountryCode: out.CountryCode, Stale: out.Stale}
}

type newsResponse struct {
	Title     string               `json:"title"`
	FeedTitle string               `json:"feedTitle"`
	Items     []providers.NewsItem `json:"items"`
}

// preferences never fails; the service falls back to defaults.
func (c *weatherControllerImpl) preferences(r *http.Request) types.Preferences {
	prefs, err := c.service.Preferences(r.Context(), sessionID(r))
	if err != nil {
		slog.Warn("preferences unavailable", "error", err)
	}
	return prefs
}

func (c *weatherControllerImpl) translation(r *http.Request) *locale.Translation {
	return c.service.Translation(c.preferences(r).Language)
}

func (c *weatherControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	prefs := c.preferences(r)

	languages := make([]views.Option, 0, len(types.Languages))
	for _, lang := range types.Languages {
		languages = append(languages, views.Option{
			Value:    string(lang),
			Label:    c.service.Translation(lang).Name,
			Selected: lang == prefs.Language,
		})
	}
	units := make([]views.Option, 0, len(types.Units))
	for _, u := range types.Units {
		units = append(units, views.Option{Value: string(u), Label: convert.UnitSymbol(u), Selected: u == prefs.Unit})
	}

	data := &views.DashboardData{
		Tr:                   c.service.Translation(prefs.Language),
		GeolocationTimeoutMs: c.geolocationTimeout.Milliseconds(),
		Languages:            languages,
		Units:                units,
	}
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

// lookup picks the lookup kind from the query: a named place with
// coordinates, a city search, or the location chain.
func (c *weatherControllerImpl) lookup(r *http.Request) (service.Outcome, error) {
	ctx := r.Context()
	id := sessionID(r)
	q := r.URL.Query()

	coords, hasCoords, err := parseCoordinates(r)
	if err != nil {
		return service.Outcome{}, err
	}
	if name := strings.TrimSpace(q.Get("name")); name != "" && hasCoords {
		return c.service.Lookup(ctx, id, service.Target{
			Name:        name,
			CountryCode: strings.ToUpper(strings.TrimSpace(q.Get("country"))),
			Coordinates: coords,
		})
	}
	if city := strings.TrimSpace(q.Get("city")); city != "" {
		return c.service.LookupCity(ctx, id, city)
	}
	return c.service.LocateAndLookup(ctx, id, locationRequest(r, coords, hasCoords))
}

func (c *weatherControllerImpl) handleWeather(w http.ResponseWriter, r *http.Request) {
	out, err := c.lookup(r)
	if err != nil {
		status, msg := errorResponse(err, c.translation(r))
		logLookupError("weather", status, err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newWeatherResponse(out))
}

func (c *weatherControllerImpl) handleCurrent(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.Current(r.Context(), sessionID(r))
	if err != nil {
		status, msg := errorResponse(err, c.translation(r))
		logLookupError("current weather", status, err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newWeatherResponse(out))
}

func (c *weatherControllerImpl) handleLocate(w http.ResponseWriter, r *http.Request) {
	coords, hasCoords, err := parseCoordinates(r)
	if err != nil {
		status, msg := errorResponse(err, c.translation(r))
		logLookupError("locate", status, err)
		utils.WriteError(w, status, msg)
		return
	}
	res, err := c.service.Locate(r.Context(), sessionID(r), locationRequest(r, coords, hasCoords))
	if err != nil {
		status, msg := errorResponse(err, c.translation(r))
		logLookupError("locate", status, err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (c *weatherControllerImpl) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	places, ok, err := c.service.Suggest(r.Context(), sessionID(r), r.URL.Query().Get("q"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		slog.Warn("suggestions failed", "error", err)
		utils.WriteError(w, http.StatusBadGateway, c.translation(r).Errors.NetworkError)
		return
	}
	if places == nil {
		places = []types.Place{}
	}
	utils.WriteJSON(w, http.StatusOK, places)
}

func (c *weatherControllerImpl) handleNews(w http.ResponseWriter, r *http.Request) {
	cc := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	tr := c.translation(r)
	news, err := c.service.News(r.Context(), cc)
	if err != nil {
		utils.WriteError(w, http.StatusBadGateway, tr.Errors.ErrorNews)
		return
	}
	items := news.Items
	if items == nil {
		items = []providers.NewsItem{}
	}
	utils.WriteJSON(w, http.StatusOK, newsResponse{Title: tr.NewsTitle(cc), FeedTitle: news.FeedTitle, Items: items})
}

func (c *weatherControllerImpl) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.preferences(r))
}

func (c *weatherControllerImpl) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	current := c.preferences(r)
	prefs, err := parsePreferences(r, current)
	if err != nil {
		slog.Warn("invalid preferences", "error", err)
		utils.WriteError(w, http.StatusBadRequest, c.service.Translation(current.Language).Errors.Error)
		return
	}
	if err := c.service.SetPreferences(r.Context(), sessionID(r), prefs); err != nil {
		slog.Error("save preferences failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, c.service.Translation(prefs.Language).Errors.Error)
		return
	}
	utils.WriteJSON(w, http.StatusOK, prefs)
}
