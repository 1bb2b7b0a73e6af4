package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weatherdash/internal/utils"
)

func runStream(t *testing.T, ctrl *weatherControllerImpl, req *http.Request) (*httptest.ResponseRecorder, chan struct{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.handleEffectsStream(rec, req)
	}()
	return rec, done
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}

func Test_handleEffectsStream(t *testing.T) {
	t.Run("stops when the client leaves", func(t *testing.T) {
		m := newMockService(t)
		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/effects/stream", nil).WithContext(ctx)

		rec, done := runStream(t, newController(m), req)
		cancel()
		waitDone(t, done)

		if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("Content-Type = %q; want text/event-stream", ct)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("stops when the session is closed", func(t *testing.T) {
		m := newMockService(t)
		ctx := utils.WithSessionID(context.Background(), "s1")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/effects/stream", nil).WithContext(ctx)
		state := m.Session("s1")

		_, done := runStream(t, newController(m), req)
		state.Close()
		waitDone(t, done)
	})
}
