// Package httptransport assembles the public HTTP surface: middleware chain,
// health and metrics endpoints, and the authenticated onboarding routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sellerflow/internal/platform/metrics"
	"sellerflow/internal/platform/middleware"
)

// Registrar mounts a domain's routes on a router. Implemented by each
// handler package.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries everything the router needs beyond the handlers.
type RouterConfig struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.JWTValidator
	Timeout   time.Duration
}

// NewRouter wires the middleware chain and mounts every handler behind
// authentication. Health and metrics stay outside the authenticated group.
func NewRouter(cfg RouterConfig, handlers ...Registrar) http.Handler {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Device)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}
