package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"weatherdash/internal/config"
	"weatherdash/internal/utils"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(t *testing.T, store Pinger, staticDir string) *httptest.Server {
	t.Helper()

	mux := NewMux(store, staticDir)
	mux.HandleFunc("GET /whoami", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"session": utils.SessionID(r.Context())})
	})
	srv := NewServer(config.Config{HTTPAddr: ":0"}, mux)
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(ts.Close)
	return ts
}

func mustGetJSON[T any](t *testing.T, client *http.Client, req *http.Request, out *T) *http.Response {
	t.Helper()

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return resp
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestHealthz(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ts := newTestServer(t, fakePinger{}, "")

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), newRequest(t, ts.URL+"/healthz"), &body)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
		}
		if body["status"] != "ok" {
			t.Fatalf("body.status=%q want=%q", body["status"], "ok")
		}
	})

	t.Run("store down", func(t *testing.T) {
		ts := newTestServer(t, fakePinger{err: errors.New("connection refused")}, "")

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), newRequest(t, ts.URL+"/healthz"), &body)

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusInternalServerError)
		}
		if !strings.Contains(body["message"], "preference store") {
			t.Fatalf("message=%q", body["message"])
		}
	})
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, fakePinger{}, dir)

	resp, err := ts.Client().Get(ts.URL + "/static/app.js")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	missing, err := ts.Client().Get(ts.URL + "/static/nope.js")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d want=%d", missing.StatusCode, http.StatusNotFound)
	}
}

func sessionCookieOf(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestSessionCookie(t *testing.T) {
	ts := newTestServer(t, fakePinger{}, "")

	t.Run("issues a new id", func(t *testing.T) {
		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), newRequest(t, ts.URL+"/whoami"), &body)

		c := sessionCookieOf(resp)
		if c == nil {
			t.Fatal("no session cookie set")
		}
		if _, err := uuid.Parse(c.Value); err != nil {
			t.Errorf("cookie value %q is not a uuid", c.Value)
		}
		if body["session"] != c.Value {
			t.Errorf("context session=%q want=%q", body["session"], c.Value)
		}
		if !c.HttpOnly {
			t.Error("cookie is not HttpOnly")
		}
	})

	t.Run("keeps a valid id", func(t *testing.T) {
		id := uuid.NewString()
		req := newRequest(t, ts.URL+"/whoami")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), req, &body)

		if c := sessionCookieOf(resp); c != nil {
			t.Errorf("cookie reissued: %q", c.Value)
		}
		if body["session"] != id {
			t.Errorf("context session=%q want=%q", body["session"], id)
		}
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := newRequest(t, ts.URL+"/whoami")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc"})

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), req, &body)

		c := sessionCookieOf(resp)
		if c == nil || c.Value == "../../etc" {
			t.Fatalf("cookie = %+v; want a fresh id", c)
		}
		if body["session"] != c.Value {
			t.Errorf("context session=%q want=%q", body["session"], c.Value)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "http request" || entry["path"] != "/brew" || entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("log entry = %v", entry)
	}
}

func TestStatusRecorder_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	var w http.ResponseWriter = sr
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusRecorder does not implement http.Flusher")
	}
	f.Flush()
	if !rec.Flushed {
		t.Error("Flush was not passed through")
	}
}
