package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ledgergate/internal/demo/models"
	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/rpc"
	"ledgergate/pkg/platform/httputil"
	"ledgergate/pkg/platform/middleware/request"
)

// Service defines the gateway operations behind the demo endpoints.
type Service interface {
	HandlePagedQuery(ctx context.Context, pageNumber int) (models.PageResult, error)
	ListOtherIdentities(ctx context.Context) ([]ledger.X500Name, error)
	Self(ctx context.Context) (ledger.X500Name, error)
	TriggerWorkflow(ctx context.Context) (models.WorkflowResult, error)
}

// Handler serves the /demo endpoints.
type Handler struct {
	service        Service
	logger         *slog.Logger
	requestTimeout time.Duration
}

type Option func(*Handler)

// WithRequestTimeout bounds every endpoint except the workflow trigger.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.requestTimeout = d
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the demo routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/demo", func(r chi.Router) {
		// Waits for the node's workflow outcome, so it is not bounded by the request timeout.
		r.Get("/sayHelloTo", h.handleSayHelloTo)

		r.Group(func(r chi.Router) {
			r.Use(request.Timeout(h.requestTimeout))
			r.Get("/hello", h.handleHello)
			r.Get("/allNodes", h.handleAllNodes)
			r.Get("/me", h.handleMe)
			r.Get("/getAllHello/{pageNumber}", h.handleGetAllHello)
		})
	})
}

func (h *Handler) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, models.OK(models.HelloMessage))
}

func (h *Handler) handleAllNodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	others, err := h.service.ListOtherIdentities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list nodes",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	writeEnvelope(w, models.OK(map[string][]ledger.X500Name{models.KeyAllNodes: others}))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, err := h.service.Self(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read node identity",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	writeEnvelope(w, models.OK(map[string]ledger.X500Name{models.KeyMe: me}))
}

func (h *Handler) handleGetAllHello(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	pageNumber, err := strconv.Atoi(chi.URLParam(r, "pageNumber"))
	if err != nil {
		h.logger.InfoContext(ctx, "non-numeric page number",
			"request_id", requestID,
			"page_number", chi.URLParam(r, "pageNumber"),
		)
		writeEnvelope(w, models.BadRequest(models.InvalidPageMessage))
		return
	}

	result, err := h.service.HandlePagedQuery(ctx, pageNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query hello states",
			"request_id", requestID,
			"page_number", pageNumber,
			"error", err,
		)
		if rpc.IsRPCError(err) {
			writeEnvelope(w, models.InternalError(rpc.Message(err)))
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if result.Outcome == models.OutcomeEmpty {
		h.logger.InfoContext(ctx, "no hello states on page",
			"request_id", requestID,
			"page_number", pageNumber,
			"reason", string(result.Reason),
		)
		writeEnvelope(w, models.BadRequest(models.InvalidPageMessage))
		return
	}
	writeEnvelope(w, models.OK(result.Items))
}

func (h *Handler) handleSayHelloTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.service.TriggerWorkflow(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to say hello",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		writeEnvelope(w, models.InternalError(rpc.Message(err)))
		return
	}

	if result.Outcome == models.WorkflowNoCounterparty {
		writeEnvelope(w, models.BadRequest(models.NoCounterpartyMessage))
		return
	}
	writeEnvelope(w, models.OK(result.TransactionID.String()))
}

func writeEnvelope(w http.ResponseWriter, env models.Envelope) {
	if text, ok := env.Body.(string); ok {
		httputil.WriteText(w, env.Status, text)
		return
	}
	httputil.WriteJSON(w, env.Status, env.Body)
}
