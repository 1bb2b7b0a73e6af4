package httpapi

import (
	"net/http"
)

// NewMux registers the health check and, when staticDir is set, the static
// asset file server.
func NewMux(store Pinger, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, store)
	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	return mux
}
