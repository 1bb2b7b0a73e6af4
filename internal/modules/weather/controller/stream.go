package controller

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"weatherdash/internal/utils"
)

type flashEvent struct {
	At         time.Time `json:"at"`
	DurationMs int64     `json:"durationMs"`
}

// handleEffectsStream forwards the session's lightning flashes as server-sent
// events until the client leaves or the session is swept.
func (c *weatherControllerImpl) handleEffectsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	state := c.service.Session(sessionID(r))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-state.Done():
			return
		case f := <-state.Flashes():
			payload, err := json.Marshal(flashEvent{At: f.At, DurationMs: f.Duration.Milliseconds()})
			if err != nil {
				slog.Error("encode flash failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: flash\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
