// handlers/router.go
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the extractor, health and metrics endpoints.
func NewRouter(extract *ExtractHandler, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	extract.Register(r)
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, logger, http.StatusOK, map[string]string{"status": "ok", "message": "ADCVD extractor is healthy"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// NewServer builds the HTTP server. Uploads run a whole batch inside the
// request, so there is no write timeout.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
