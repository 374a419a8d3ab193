package devnode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ledgergate/internal/ledger/rpc"
	dErrors "ledgergate/pkg/domain-errors"
	"ledgergate/pkg/platform/httputil"
	"ledgergate/pkg/platform/middleware/request"
)

const maxRequestBody = 1 << 20

type userKey struct{}

// Server serves the node RPC protocol.
type Server struct {
	cfg      *Config
	sessions *Sessions
	vault    *Vault
	engine   *Engine
	logger   *slog.Logger
}

func NewServer(cfg *Config, sessions *Sessions, vault *Vault, engine *Engine, logger *slog.Logger) *Server {
	return &Server{cfg: cfg, sessions: sessions, vault: vault, engine: engine, logger: logger}
}

// Router returns the RPC routes behind the request middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(s.logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(s.logger))
	r.Use(request.BodyLimit(maxRequestBody))

	r.Post(rpc.PathSession, s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get(rpc.PathNodeInfo, s.handleNodeInfo)
		r.Get(rpc.PathNetworkMap, s.handleNetworkMap)
		r.Post(rpc.PathVaultQuery, s.handleVaultQuery)
		r.Post(rpc.PathFlows, s.handleStartFlow)
		r.Get(rpc.PathFlows+"/{flowID}/result", s.handleFlowResult)
	})
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	user, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="node rpc"`)
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "RPC credentials required"))
		return
	}
	token, expiresAt, err := s.sessions.Login(user, password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "rpc login rejected",
			"user", user,
			"request_id", request.GetRequestID(r.Context()),
		)
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rpc.SessionResponse{Token: token, ExpiresAt: expiresAt})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, dErrors.New(dErrors.CodeUnauthorized, "RPC session required"))
			return
		}
		user, err := s.sessions.Verify(token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func (s *Server) handleNodeInfo(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.cfg.NodeInfo())
}

func (s *Server) handleNetworkMap(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.cfg.NetworkMap())
}

func (s *Server) handleVaultQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[rpc.VaultQueryRequest](w, r, s.logger)
	if !ok {
		return
	}
	page, err := s.vault.Query(r.Context(), req.ContractStateType, req.Criteria, req.Paging)
	if err != nil {
		s.logger.InfoContext(r.Context(), "vault query rejected",
			"error", err,
			"request_id", request.GetRequestID(r.Context()),
		)
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) handleStartFlow(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[rpc.StartFlowRequest](w, r, s.logger)
	if !ok {
		return
	}
	id, err := s.engine.Start(req.FlowName, req.Args)
	if err != nil {
		writeError(w, err)
		return
	}
	user, _ := r.Context().Value(userKey{}).(string)
	s.logger.InfoContext(r.Context(), "flow started",
		"flow", req.FlowName,
		"flow_id", id,
		"user", user,
	)
	httputil.WriteJSON(w, http.StatusOK, rpc.StartFlowResponse{FlowID: id})
}

func (s *Server) handleFlowResult(w http.ResponseWriter, r *http.Request) {
	wait := s.cfg.MaxPollWait
	if v := r.URL.Query().Get(rpc.WaitParam); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			writeError(w, dErrors.New(dErrors.CodeBadRequest, "wait must be a non-negative duration"))
			return
		}
		wait = min(d, s.cfg.MaxPollWait)
	}

	res, err := s.engine.Await(r.Context(), chi.URLParam(r, "flowID"), wait)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Status == rpc.FlowRunning {
		httputil.WriteJSON(w, http.StatusAccepted, res)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// writeError answers in the node's error format, passing the message through.
func writeError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		httputil.WriteJSON(w, httputil.DomainCodeToHTTPStatus(de.Code), rpc.ErrorResponse{
			Error:   httputil.DomainCodeToHTTPCode(de.Code),
			Message: de.Message,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, rpc.ErrorResponse{
		Error:   httputil.DomainCodeToHTTPCode(dErrors.CodeInternal),
		Message: err.Error(),
	})
}
