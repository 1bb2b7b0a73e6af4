package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"weatherdash/internal/modules/weather/service"
	"weatherdash/internal/modules/weather/views"
	"weatherdash/internal/utils"
)

// handleWeatherPartial renders the weather panel. Failures render the
// localized message in place of the panel so HTMX still swaps it in.
// With current set and nothing looked up yet it answers 204.
func (c *weatherControllerImpl) handleWeatherPartial(w http.ResponseWriter, r *http.Request) {
	var (
		out service.Outcome
		err error
	)
	if r.URL.Query().Get("current") != "" {
		out, err = c.service.Current(r.Context(), sessionID(r))
		if errors.Is(err, service.ErrNoSnapshot) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	} else {
		out, err = c.lookup(r)
	}

	var buf bytes.Buffer
	var renderErr error
	if err != nil {
		status, msg := errorResponse(err, c.translation(r))
		logLookupError("weather partial", status, err)
		renderErr = views.RenderErrorPartial(&buf, msg)
	} else {
		renderErr = views.RenderWeatherPartial(&buf, &views.WeatherData{
			Tr:          c.service.Translation(out.View.Language),
			View:        out.View,
			CountryCode: out.CountryCode,
		})
	}
	if renderErr != nil {
		slog.Error("weather partial render failed", "error", renderErr)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handleSuggestionsPartial(w http.ResponseWriter, r *http.Request) {
	places, ok, err := c.service.Suggest(r.Context(), sessionID(r), r.URL.Query().Get("q"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		slog.Warn("suggestions partial: search failed", "error", err)
		places = nil
	}

	var buf bytes.Buffer
	if err := views.RenderSuggestionsPartial(&buf, &views.SuggestionsData{Places: places}); err != nil {
		slog.Error("suggestions partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handleNewsPartial(w http.ResponseWriter, r *http.Request) {
	cc := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	tr := c.translation(r)
	data := &views.NewsData{Tr: tr, Title: tr.NewsTitle(cc)}

	news, err := c.service.News(r.Context(), cc)
	if err != nil {
		data.Error = tr.Errors.ErrorNews
	} else {
		data.News = news
	}

	var buf bytes.Buffer
	if err := views.RenderNewsPartial(&buf, data); err != nil {
		slog.Error("news partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}
