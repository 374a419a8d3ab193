package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "ledgergate/pkg/domain-errors"
	"ledgergate/pkg/requestcontext"
	"ledgergate/pkg/validation"
)

// DecodeJSON decodes a JSON request body into T and runs struct validation on it.
// On failure it writes the error response and returns nil, false.
//
//	req, ok := httputil.DecodeJSON[vaultQueryRequest](w, r, s.logger)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := validation.Validate(&req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, err)
		return nil, false
	}
	return &req, true
}
