// Package providers holds the clients for the third-party HTTP APIs the
// dashboard is built on. All clients share one resty client so that the rate
// limit and request logging apply to every upstream call.
package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound   = errors.New("no matching result")
	ErrUpstream   = errors.New("upstream request failed")
	ErrNewsStatus = errors.New("news feed status not ok")
)

const userAgent = "weatherdash/1.0"

type Options struct {
	// Timeout of zero means requests wait until the caller's context ends.
	Timeout time.Duration
	// RPS <= 0 disables the shared rate limit.
	RPS    float64
	Burst  int
	Logger *slog.Logger
}

// NewHTTPClient builds the shared upstream client.
func NewHTTPClient(opts Options) *resty.Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)

	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("upstream response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"bytes", len(resp.Body()),
		)
		return nil
	})
	return client
}

func statusError(resp *resty.Response) error {
	return fmt.Errorf("%w: %s %s", ErrUpstream, resp.Request.URL, resp.Status())
}

func decode(resp *resty.Response, v any) error {
	if !resp.IsSuccess() {
		return statusError(resp)
	}
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, resp.Request.URL, err)
	}
	return nil
}

// flexFloat accepts both JSON numbers and numeric strings; IP providers
// disagree on how they encode coordinates.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse coordinate %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}
