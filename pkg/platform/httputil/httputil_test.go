package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ledgergate/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "page_size is required"), http.StatusBadRequest, "validation_error"},
		{"bad request", dErrors.New(dErrors.CodeBadRequest, "invalid request body"), http.StatusBadRequest, "bad_request"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "bad credentials"), http.StatusUnauthorized, "unauthorized"},
		{"throttled", dErrors.New(dErrors.CodeTooManyRequests, "slow down"), http.StatusTooManyRequests, "rate_limited"},
		{"timeout", dErrors.New(dErrors.CodeTimeout, "node timed out"), http.StatusGatewayTimeout, "node_timeout"},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "node down"), http.StatusBadGateway, "node_unavailable"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}

	t.Run("plain errors do not leak their text", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("dial tcp 10.0.0.1:10006: connection refused"))
		assert.NotContains(t, w.Body.String(), "10.0.0.1")
	})
}

func TestWriteText(t *testing.T) {
	w := httptest.NewRecorder()
	WriteText(w, http.StatusBadRequest, "Please specify a page number above 0.")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please specify a page number above 0.", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
}

type pagingRequest struct {
	PageNumber int `json:"pageNumber" validate:"gte=1"`
	PageSize   int `json:"pageSize" validate:"required,min=1"`
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("decodes a valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pageNumber":2,"pageSize":200}`))
		w := httptest.NewRecorder()

		req, ok := DecodeJSON[pagingRequest](w, r, logger)
		require.True(t, ok)
		assert.Equal(t, 2, req.PageNumber)
		assert.Equal(t, 200, req.PageSize)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pageNumber":`))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[pagingRequest](w, r, logger)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "bad_request")
	})

	t.Run("validation failure names the field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pageNumber":0,"pageSize":200}`))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[pagingRequest](w, r, logger)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "page_number must be greater than or equal to 1")
	})
}
