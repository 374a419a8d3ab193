package service

import (
	"context"
	"log/slog"
	"time"

	"ledgergate/internal/demo/metrics"
	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/rpc"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks NodeClient

// NodeClient is the ledger node capability the gateways delegate to.
// Implementations must be safe for concurrent use.
type NodeClient interface {
	NodeInfo(ctx context.Context) (*ledger.NodeInfo, error)
	NetworkMapSnapshot(ctx context.Context) ([]ledger.NodeInfo, error)
	VaultQueryByWithPagingSpec(
		ctx context.Context,
		contractStateType string,
		criteria ledger.LinearStateQueryCriteria,
		paging ledger.PageSpecification,
	) (*ledger.Page, error)
	StartFlowDynamic(ctx context.Context, flowName string, args ...string) (rpc.FlowFuture, error)
}

const defaultPageSize = 200

var defaultServiceOrganisations = []string{"Notary", "Oracle"}

// Service implements the query, identity and workflow gateways over one node.
type Service struct {
	node         NodeClient
	logger       *slog.Logger
	metrics      *metrics.Metrics
	pageSize     int
	serviceOrgs  map[string]struct{}
	workflowWait time.Duration
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPageSize sets the fixed page size of every paged query. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithServiceOrganisations replaces the organisations hidden from peer listings.
func WithServiceOrganisations(orgs []string) Option {
	return func(s *Service) {
		s.serviceOrgs = toSet(orgs)
	}
}

// WithWorkflowWaitTimeout bounds how long TriggerWorkflow waits for the
// flow's result. Zero, the default, waits until the node answers.
func WithWorkflowWaitTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.workflowWait = d
		}
	}
}

// New creates the gateway service. node is owned by the caller and shared.
func New(node NodeClient, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		node:        node,
		logger:      logger,
		pageSize:    defaultPageSize,
		serviceOrgs: toSet(defaultServiceOrganisations),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// RPCNode adapts *rpc.Client to NodeClient.
type RPCNode struct {
	*rpc.Client
}

func (n RPCNode) StartFlowDynamic(ctx context.Context, flowName string, args ...string) (rpc.FlowFuture, error) {
	h, err := n.Client.StartFlowDynamic(ctx, flowName, args...)
	if err != nil {
		return nil, err
	}
	return h, nil
}

var _ NodeClient = RPCNode{}
