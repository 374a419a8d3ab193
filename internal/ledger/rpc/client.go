// Package rpc is the client for a ledger node's JSON-over-HTTP RPC interface.
//
// A Client is created once per process, connected with Connect, and then
// shared by every request handler; all methods are safe for concurrent use.
// Calls are never retried: each failure is returned as an *RPCError.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"ledgergate/internal/ledger/metrics"
	"ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/tracer"
	"ledgergate/pkg/platform/circuit"
)

// Operation names used for errors, metrics and spans.
const (
	OpSession    = "session"
	OpNodeInfo   = "node_info"
	OpNetworkMap = "network_map"
	OpVaultQuery = "vault_query"
	OpStartFlow  = "start_flow"
	OpFlowResult = "flow_result"
)

var spanNames = map[string]string{
	OpSession:    tracer.SpanSession,
	OpNodeInfo:   tracer.SpanNodeInfo,
	OpNetworkMap: tracer.SpanNetworkMap,
	OpVaultQuery: tracer.SpanVaultQuery,
	OpStartFlow:  tracer.SpanStartFlow,
	OpFlowResult: tracer.SpanFlowResult,
}

const defaultPollWait = 20 * time.Second

// Config locates and authenticates against the node.
type Config struct {
	URL      string
	User     string
	Password string
	// Timeout bounds a single HTTP round trip; 0 means no limit.
	Timeout time.Duration
}

// Client talks to one ledger node.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	pollWait   time.Duration
	session    *session
	tracer     tracer.Tracer
	metrics    *metrics.Metrics
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreaker feeds every call outcome to b. Only failures that say the node
// is unwell count against it: transport, timeout and node_error.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithPollWait sets how long the node may hold one flow-result long poll.
func WithPollWait(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollWait = d
		}
	}
}

// WithClock overrides the clock used for session expiry (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.session.now = now
	}
}

// New creates a client. It does not contact the node; call Connect for that.
func New(cfg Config, opts ...Option) *Client {
	pollWait := defaultPollWait
	if cfg.Timeout > 0 && cfg.Timeout/2 < pollWait {
		pollWait = cfg.Timeout / 2
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		pollWait:   pollWait,
		session:    newSession(cfg.Timeout),
		tracer:     tracer.NewNoop(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect logs in to the node and verifies it answers with its identity.
func (c *Client) Connect(ctx context.Context) error {
	if _, err := c.session.current(ctx, c.login); err != nil {
		return err
	}
	info, err := c.NodeInfo(ctx)
	if err != nil {
		return err
	}
	if name, ok := info.PrimaryName(); ok {
		c.logger.InfoContext(ctx, "connected to ledger node", "node", name.String(), "url", c.baseURL)
	}
	return nil
}

// NodeInfo returns the connected node's own description.
func (c *Client) NodeInfo(ctx context.Context) (*models.NodeInfo, error) {
	var info models.NodeInfo
	if _, err := c.call(ctx, OpNodeInfo, http.MethodGet, PathNodeInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// NetworkMapSnapshot returns every node currently on the network map, including this one.
func (c *Client) NetworkMapSnapshot(ctx context.Context) ([]models.NodeInfo, error) {
	var nodes []models.NodeInfo
	if _, err := c.call(ctx, OpNetworkMap, http.MethodGet, PathNetworkMap, nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// VaultQueryByWithPagingSpec returns one page of states of contractStateType.
// The node rejects page numbers below 1.
func (c *Client) VaultQueryByWithPagingSpec(
	ctx context.Context,
	contractStateType string,
	criteria models.LinearStateQueryCriteria,
	paging models.PageSpecification,
) (*models.Page, error) {
	req := VaultQueryRequest{ContractStateType: contractStateType, Criteria: criteria, Paging: paging}
	var page models.Page
	_, err := c.call(ctx, OpVaultQuery, http.MethodPost, PathVaultQuery, req, &page,
		tracer.Int(tracer.AttrPageNumber, paging.PageNumber),
		tracer.Int(tracer.AttrPageSize, paging.PageSize),
		tracer.String(tracer.AttrStateStatus, string(criteria.Status)),
	)
	if err != nil {
		return nil, err
	}
	if len(page.States) != len(page.StatesMetadata) {
		return nil, newError(CategoryBadData, OpVaultQuery,
			fmt.Sprintf("vault returned %d states but %d metadata entries", len(page.States), len(page.StatesMetadata)), nil)
	}
	return &page, nil
}

// StartFlowDynamic starts flowName on the node and returns a handle to its result.
func (c *Client) StartFlowDynamic(ctx context.Context, flowName string, args ...string) (*FlowHandle, error) {
	if args == nil {
		args = []string{}
	}
	var resp StartFlowResponse
	_, err := c.call(ctx, OpStartFlow, http.MethodPost, PathFlows, StartFlowRequest{FlowName: flowName, Args: args}, &resp,
		tracer.String(tracer.AttrFlowName, flowName),
	)
	if err != nil {
		return nil, err
	}
	if resp.FlowID == "" {
		return nil, newError(CategoryBadData, OpStartFlow, "node returned no flow id", nil)
	}
	if c.metrics != nil {
		c.metrics.FlowStarted()
	}
	return &FlowHandle{ID: resp.FlowID, FlowName: flowName, client: c}, nil
}

// call performs one authenticated round trip and decodes a 2xx body into out.
// It returns the HTTP status so long-poll callers can tell 202 from 200.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any, attrs ...tracer.Attribute) (status int, err error) {
	ctx, span := c.tracer.Start(ctx, spanNames[op], attrs...)
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = string(CategoryOf(err))
			}
			c.metrics.ObserveCall(op, outcome, time.Since(start).Seconds())
		}
		// A call its caller abandoned says nothing about the node.
		if c.breaker != nil && ctx.Err() == nil {
			c.breaker.Record(!nodeUnwell(err))
		}
		span.End(err)
	}()

	token, err := c.session.current(ctx, c.login)
	if err != nil {
		return 0, err
	}

	req, err := c.newRequest(ctx, op, method, path, in)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	status, err = c.do(ctx, op, req, out)
	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, status))
	if CategoryOf(err) == CategoryAuth {
		// The next call logs in again.
		c.session.invalidate(token)
	}
	return status, err
}

func (c *Client) newRequest(ctx context.Context, op, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, newError(CategoryInternal, op, "failed to marshal request", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, newError(CategoryInternal, op, "failed to create request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(ctx context.Context, op string, req *http.Request, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return 0, newError(CategoryTimeout, op, err.Error(), err)
		}
		return 0, newError(CategoryTransport, op, err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, newError(CategoryTransport, op, err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, statusError(op, resp.StatusCode, body)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, newError(CategoryBadData, op, "failed to decode node response", err)
		}
	}
	return resp.StatusCode, nil
}

func statusError(op string, status int, body []byte) *RPCError {
	message := http.StatusText(status)
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		switch {
		case errResp.Message != "":
			message = errResp.Message
		case errResp.Description != "":
			message = errResp.Description
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(CategoryAuth, op, message, nil)
	case status >= 500:
		return newError(CategoryNode, op, message, nil)
	default:
		return newError(CategoryRejected, op, message, nil)
	}
}
