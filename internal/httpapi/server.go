package httpapi

import (
	"net/http"
	"time"

	"weatherdash/internal/config"
)

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(sessionCookie(handler)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
