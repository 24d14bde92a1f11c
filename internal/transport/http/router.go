// Package httptransport assembles the HTTP surface: middleware chain, the
// authenticated API routes, and the unauthenticated operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lotshandler "github.com/Soozey/MADAVOLA/internal/lots/handler"
	"github.com/Soozey/MADAVOLA/internal/platform/metrics"
	"github.com/Soozey/MADAVOLA/internal/platform/middleware"
	"github.com/Soozey/MADAVOLA/internal/receipts"
	taxeshandler "github.com/Soozey/MADAVOLA/internal/taxes/handler"
)

const requestTimeout = 30 * time.Second

// Deps carries the wired handlers and platform pieces the router mounts.
type Deps struct {
	Lots      *lotshandler.Handler
	Taxes     *taxeshandler.Handler
	Receipts  *receipts.Handler
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator
	Health    func(w http.ResponseWriter, r *http.Request)
}

// NewRouter wires the full HTTP surface. Every API route runs behind the
// middleware chain and bearer auth; health and metrics stay open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(deps.Metrics))

	r.Group(func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		deps.Lots.Register(api)
		deps.Taxes.Register(api)
		if deps.Receipts != nil {
			deps.Receipts.Register(api)
		}
	})

	if deps.Health != nil {
		r.Get("/healthz", deps.Health)
	} else {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
