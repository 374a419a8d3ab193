package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledgergate/pkg/platform/middleware/request"
	"ledgergate/pkg/platform/middleware/throttle"
)

// RouteRegistrar mounts a module's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Config holds the shared pieces of the middleware stack.
type Config struct {
	Logger   *slog.Logger
	Latency  *request.Metrics
	Throttle *throttle.Limiter
	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
}

// NewRouter wires probes, /metrics and the given modules behind the common
// middleware stack. Probes and /metrics bypass the throttle.
func NewRouter(cfg Config, probes RouteRegistrar, modules ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.Latency))

	if probes != nil {
		probes.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Throttle.Middleware)
		for _, m := range modules {
			m.Register(r)
		}
	})

	return r
}
