// Package throttle provides a process-wide token bucket in front of handlers
// that forward to a single upstream node, so a burst of callers cannot
// saturate the node's RPC interface.
package throttle

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	dErrors "ledgergate/pkg/domain-errors"
	"ledgergate/pkg/platform/httputil"
	"ledgergate/pkg/requestcontext"
)

// Limiter wraps a shared token bucket. A nil *Limiter allows everything.
type Limiter struct {
	bucket *rate.Limiter
	logger *slog.Logger
}

// New returns a limiter admitting rps requests per second with the given burst.
// Non-positive rps disables throttling and returns nil.
func New(rps float64, burst int, logger *slog.Logger) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = max(1, int(rps))
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(rps), burst),
		logger: logger,
	}
}

// Allow reports whether one more request may proceed now.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.bucket.Allow()
}

// Middleware rejects requests beyond the bucket with 429 and a Retry-After hint.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket.Allow() {
			ctx := r.Context()
			if l.logger != nil {
				l.logger.WarnContext(ctx, "global throttle triggered",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			w.Header().Set("Retry-After", strconv.Itoa(1))
			httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "too many requests, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
