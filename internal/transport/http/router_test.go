package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"ledgergate/internal/platform/health"
	"ledgergate/pkg/platform/middleware/request"
	"ledgergate/pkg/platform/middleware/throttle"
)

type pingModule struct{}

func (pingModule) Register(r chi.Router) {
	r.Get("/demo/hello", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	r.Get("/demo/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestRouter(limiter *throttle.Limiter) http.Handler {
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Config{
		Logger:   logger,
		Latency:  request.NewMetrics(reg),
		Throttle: limiter,
		Gatherer: reg,
	}, health.New("test"), pingModule{})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	router := newTestRouter(nil)

	t.Run("module routes carry a request id", func(t *testing.T) {
		w := get(router, "/demo/hello")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("probes are mounted", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(router, "/health/live").Code)
	})

	t.Run("metrics expose endpoint latency", func(t *testing.T) {
		get(router, "/demo/hello")
		w := get(router, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ledgergate_endpoint_latency_seconds")
	})

	t.Run("panics become 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, get(router, "/demo/panic").Code)
	})

	t.Run("unknown routes are 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(router, "/demo/nope").Code)
	})
}

func TestNewRouter_ThrottleSparesProbes(t *testing.T) {
	router := newTestRouter(throttle.New(0.001, 1, nil))

	assert.Equal(t, http.StatusOK, get(router, "/demo/hello").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/demo/hello").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/live").Code)
	assert.Equal(t, http.StatusOK, get(router, "/metrics").Code)
}
