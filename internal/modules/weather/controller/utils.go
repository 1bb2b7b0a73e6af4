package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"weatherdash/internal/modules/weather/aggregate"
	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/location"
	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/service"
	"weatherdash/internal/modules/weather/types"
	"weatherdash/internal/utils"
)

const maxPreferencesBody = 4 << 10

var errInvalidRequest = errors.New("invalid request")

func sessionID(r *http.Request) string {
	return utils.SessionID(r.Context())
}

// parseCoordinates reads lat and lon. ok is false when neither is given.
func parseCoordinates(r *http.Request) (c types.Coordinates, ok bool, err error) {
	q := r.URL.Query()
	latStr := strings.TrimSpace(q.Get("lat"))
	lonStr := strings.TrimSpace(q.Get("lon"))
	if latStr == "" && lonStr == "" {
		return types.Coordinates{}, false, nil
	}
	if latStr == "" || lonStr == "" {
		return types.Coordinates{}, false, fmt.Errorf("%w: 'lat' and 'lon' must be given together", errInvalidRequest)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return types.Coordinates{}, false, fmt.Errorf("%w: invalid 'lat' (expected -90..90)", errInvalidRequest)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return types.Coordinates{}, false, fmt.Errorf("%w: invalid 'lon' (expected -180..180)", errInvalidRequest)
	}
	return types.Coordinates{Latitude: lat, Longitude: lon}, true, nil
}

func locationRequest(r *http.Request, c types.Coordinates, hasDevice bool) location.Request {
	req := location.Request{ClientIP: utils.ClientIP(r)}
	if hasDevice {
		req.Device = location.ReportedPosition(c)
	}
	return req
}

type preferencesRequest struct {
	Language *string `json:"language"`
	Unit     *string `json:"unit"`
}

// parsePreferences applies a JSON or form body on top of current. Missing
// fields keep their current value.
func parsePreferences(r *http.Request, current types.Preferences) (types.Preferences, error) {
	var req preferencesRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxPreferencesBody)).Decode(&req); err != nil {
			return current, fmt.Errorf("%w: invalid JSON body", errInvalidRequest)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return current, fmt.Errorf("%w: invalid form body", errInvalidRequest)
		}
		if v, ok := r.Form["language"]; ok && len(v) > 0 {
			req.Language = &v[0]
		}
		if v, ok := r.Form["unit"]; ok && len(v) > 0 {
			req.Unit = &v[0]
		}
	}

	prefs := current
	if req.Language != nil {
		lang, ok := types.ParseLanguage(*req.Language)
		if !ok {
			return current, fmt.Errorf("%w: invalid 'language' %q (allowed: en, de, sr)", errInvalidRequest, *req.Language)
		}
		prefs.Language = lang
	}
	if req.Unit != nil {
		unit, ok := types.ParseUnit(*req.Unit)
		if !ok {
			return current, fmt.Errorf("%w: invalid 'unit' %q (allowed: c, f, k)", errInvalidRequest, *req.Unit)
		}
		prefs.Unit = unit
	}
	return prefs, nil
}

// errorResponse maps a lookup failure to a status and the localized text
// shown to the user.
func errorResponse(err error, tr *locale.Translation) (int, string) {
	switch {
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, tr.Errors.Error
	case errors.Is(err, providers.ErrNotFound), errors.Is(err, service.ErrNoSnapshot):
		return http.StatusNotFound, tr.Errors.Error
	case errors.Is(err, location.ErrLocationUnavailable):
		return http.StatusServiceUnavailable, tr.Errors.NetworkError
	case errors.Is(err, aggregate.ErrWeatherUnavailable), errors.Is(err, providers.ErrUpstream):
		return http.StatusBadGateway, tr.Errors.NetworkError
	default:
		return http.StatusInternalServerError, tr.Errors.Error
	}
}

func logLookupError(route string, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error(route+": lookup failed", "status", status, "error", err)
		return
	}
	slog.Warn(route+": lookup failed", "status", status, "error", err)
}
