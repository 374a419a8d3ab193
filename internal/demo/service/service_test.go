package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ledgergate/internal/demo/metrics"
	"ledgergate/internal/demo/models"
	"ledgergate/internal/demo/service/mocks"
	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/rpc"
	dErrors "ledgergate/pkg/domain-errors"
)

var (
	partyA = ledger.X500Name{Organisation: "PartyA", Locality: "London", Country: "GB"}
	partyB = ledger.X500Name{Organisation: "PartyB", Locality: "New York", Country: "US"}
	partyC = ledger.X500Name{Organisation: "PartyC", Locality: "Paris", Country: "FR"}
	notary = ledger.X500Name{Organisation: "Notary", Locality: "Zurich", Country: "CH"}
	oracle = ledger.X500Name{Organisation: "Oracle", Locality: "Madrid", Country: "ES"}
)

func nodeNamed(names ...ledger.X500Name) ledger.NodeInfo {
	parties := make([]ledger.Party, 0, len(names))
	for _, n := range names {
		parties = append(parties, ledger.Party{Name: n})
	}
	return ledger.NodeInfo{LegalIdentities: parties}
}

// stubFuture resolves through fn.
type stubFuture struct {
	fn func(ctx context.Context) (*ledger.SignedTransaction, error)
}

func (f stubFuture) ReturnValue(ctx context.Context) (*ledger.SignedTransaction, error) {
	return f.fn(ctx)
}

func resolved(tx *ledger.SignedTransaction, err error) stubFuture {
	return stubFuture{fn: func(context.Context) (*ledger.SignedTransaction, error) { return tx, err }}
}

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockNode *mocks.MockNodeClient
	metrics  *metrics.Metrics
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockNode = mocks.NewMockNodeClient(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.mockNode, slog.New(slog.NewTextHandler(io.Discard, nil)), WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// =============================================================================
// Query Gateway
// =============================================================================

func (s *ServiceSuite) helloPage(n int) *ledger.Page {
	page := &ledger.Page{TotalStatesAvailable: int64(n)}
	for i := range n {
		status := ledger.StatusUnconsumed
		if i%2 == 1 {
			status = ledger.StatusConsumed
		}
		page.States = append(page.States, ledger.StateAndRef{
			State: ledger.TransactionState{Data: ledger.HelloState{
				Sender:   partyA,
				Receiver: partyB,
				Message:  fmt.Sprintf("hello #%d", i),
				LinearID: ledger.NewUniqueIdentifier(""),
			}},
		})
		page.StatesMetadata = append(page.StatesMetadata, ledger.StateMetadata{Status: status})
	}
	return page
}

func (s *ServiceSuite) TestHandlePagedQuery_Found() {
	for _, n := range []int{1, 2, 7} {
		s.Run(fmt.Sprintf("%d states", n), func() {
			page := s.helloPage(n)
			s.mockNode.EXPECT().VaultQueryByWithPagingSpec(
				gomock.Any(),
				ledger.HelloStateType,
				ledger.LinearStateQueryCriteria{Status: ledger.StatusAll},
				ledger.PageSpecification{PageNumber: 3, PageSize: 200},
			).Return(page, nil)

			result, err := s.service.HandlePagedQuery(s.ctx, 3)
			s.Require().NoError(err)
			s.Equal(models.OutcomeFound, result.Outcome)
			s.Require().Len(result.Items, n)
			for i, item := range result.Items {
				s.Equal(page.States[i].State.Data.LinearID.String(), item.LinearID)
				s.Equal(page.StatesMetadata[i].Status, item.Status)
			}
		})
	}
}

func (s *ServiceSuite) TestHandlePagedQuery_NonPositivePageSkipsNode() {
	for _, page := range []int{0, -1, -200} {
		result, err := s.service.HandlePagedQuery(s.ctx, page)
		s.Require().NoError(err)
		s.Equal(models.Empty(models.ReasonInvalidPage), result)
	}
	s.Equal(3.0, testutil.ToFloat64(s.metrics.PagedQueriesTotal.WithLabelValues("invalid_page")))
}

func (s *ServiceSuite) TestHandlePagedQuery_PastEnd() {
	s.mockNode.EXPECT().VaultQueryByWithPagingSpec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ledger.Page{TotalStatesAvailable: 4}, nil)

	result, err := s.service.HandlePagedQuery(s.ctx, 9)
	s.Require().NoError(err)
	s.Equal(models.OutcomeEmpty, result.Outcome)
	s.Equal(models.ReasonPastEnd, result.Reason)
	s.Empty(result.Items)
}

func (s *ServiceSuite) TestHandlePagedQuery_BackendFailureIsReturnedUnchanged() {
	nodeErr := &rpc.RPCError{Category: rpc.CategoryTransport, Op: rpc.OpVaultQuery, Message: "Connection refused"}
	s.mockNode.EXPECT().VaultQueryByWithPagingSpec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nodeErr).Times(1)

	_, err := s.service.HandlePagedQuery(s.ctx, 1)
	s.Same(nodeErr, err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PagedQueriesTotal.WithLabelValues("error")))
}

func (s *ServiceSuite) TestHandlePagedQuery_ConfiguredPageSize() {
	svc := New(s.mockNode, slog.New(slog.NewTextHandler(io.Discard, nil)), WithPageSize(25), WithPageSize(0))
	s.mockNode.EXPECT().VaultQueryByWithPagingSpec(gomock.Any(), gomock.Any(), gomock.Any(),
		ledger.PageSpecification{PageNumber: 1, PageSize: 25}).Return(s.helloPage(1), nil)

	_, err := svc.HandlePagedQuery(s.ctx, 1)
	s.NoError(err)
}

// =============================================================================
// Identity Gateway
// =============================================================================

func (s *ServiceSuite) TestListOtherIdentities_Filtering() {
	cases := []struct {
		name     string
		snapshot []ledger.NodeInfo
		want     []ledger.X500Name
	}{
		{"only self", []ledger.NodeInfo{nodeNamed(partyA)}, []ledger.X500Name{}},
		{"no matches", []ledger.NodeInfo{nodeNamed(partyB), nodeNamed(partyC)}, []ledger.X500Name{partyB, partyC}},
		{
			"self and services removed in map order",
			[]ledger.NodeInfo{nodeNamed(notary), nodeNamed(partyC), nodeNamed(partyA), nodeNamed(oracle), nodeNamed(partyB)},
			[]ledger.X500Name{partyC, partyB},
		},
		{
			"only first identity is considered",
			[]ledger.NodeInfo{nodeNamed(notary, partyB), nodeNamed(partyC, partyA)},
			[]ledger.X500Name{partyC},
		},
		{"nodes without identities are skipped", []ledger.NodeInfo{{}, nodeNamed(partyB)}, []ledger.X500Name{partyB}},
		{"empty map", nil, []ledger.X500Name{}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			self := nodeNamed(partyA)
			s.mockNode.EXPECT().NetworkMapSnapshot(gomock.Any()).Return(tc.snapshot, nil)
			s.mockNode.EXPECT().NodeInfo(gomock.Any()).Return(&self, nil)

			got, err := s.service.ListOtherIdentities(s.ctx)
			s.Require().NoError(err)
			s.Equal(tc.want, got)
		})
	}
}

func (s *ServiceSuite) TestListOtherIdentities_CustomServiceOrganisations() {
	svc := New(s.mockNode, slog.New(slog.NewTextHandler(io.Discard, nil)), WithServiceOrganisations([]string{"PartyC"}))
	self := nodeNamed(partyA)
	s.mockNode.EXPECT().NetworkMapSnapshot(gomock.Any()).Return([]ledger.NodeInfo{nodeNamed(notary), nodeNamed(partyC)}, nil)
	s.mockNode.EXPECT().NodeInfo(gomock.Any()).Return(&self, nil)

	got, err := svc.ListOtherIdentities(s.ctx)
	s.Require().NoError(err)
	s.Equal([]ledger.X500Name{notary}, got)
}

func (s *ServiceSuite) TestListOtherIdentities_BackendErrorPropagates() {
	nodeErr := errors.New("network map unavailable")
	self := nodeNamed(partyA)
	s.mockNode.EXPECT().NetworkMapSnapshot(gomock.Any()).Return(nil, nodeErr)
	s.mockNode.EXPECT().NodeInfo(gomock.Any()).Return(&self, nil).AnyTimes()

	_, err := s.service.ListOtherIdentities(s.ctx)
	s.ErrorIs(err, nodeErr)
}

func (s *ServiceSuite) TestListOtherIdentities_Idempotent() {
	self := nodeNamed(partyA)
	snapshot := []ledger.NodeInfo{nodeNamed(partyA), nodeNamed(partyB), nodeNamed(notary)}
	s.mockNode.EXPECT().NetworkMapSnapshot(gomock.Any()).Return(snapshot, nil).Times(2)
	s.mockNode.EXPECT().NodeInfo(gomock.Any()).Return(&self, nil).Times(2)

	first, err := s.service.ListOtherIdentities(s.ctx)
	s.Require().NoError(err)
	second, err := s.service.ListOtherIdentities(s.ctx)
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PeersListed))
}

func (s *ServiceSuite) TestSelf() {
	s.Run("returns first legal identity", func() {
		info := nodeNamed(partyA, partyB)
		s.mockNode.EXPECT().NodeInfo(gomock.Any()).Return(&info, nil)

		got, err := s.service.Self(s.ctx)
		s.Require().NoError(err)
		s.Equal(partyA, got)
	})

	s.Run("node without identity is an internal error", func() {
		s.mockNode.EXPECT().NodeInfo(gomock.Any()).Return(&ledger.NodeInfo{}, nil)

		_, err := s.service.Self(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// =============================================================================
// Workflow Trigger Gateway
// =============================================================================

func (s *ServiceSuite) expectStart(future rpc.FlowFuture, err error) {
	s.mockNode.EXPECT().StartFlowDynamic(gomock.Any(), ledger.FlowSayHello, ledger.CommandCreate).Return(future, err)
}

func (s *ServiceSuite) TestTriggerWorkflow_Completed() {
	s.expectStart(resolved(&ledger.SignedTransaction{ID: "A1B2C3"}, nil), nil)

	result, err := s.service.TriggerWorkflow(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.WorkflowResult{Outcome: models.WorkflowCompleted, TransactionID: "A1B2C3"}, result)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WorkflowsTotal.WithLabelValues("completed")))
}

func (s *ServiceSuite) TestTriggerWorkflow_NoCounterparty() {
	s.expectStart(resolved(nil, nil), nil)

	result, err := s.service.TriggerWorkflow(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.WorkflowNoCounterparty, result.Outcome)
	s.Empty(result.TransactionID)
}

func (s *ServiceSuite) TestTriggerWorkflow_Failures() {
	s.Run("start fails", func() {
		startErr := errors.New("flow not registered")
		s.expectStart(nil, startErr)

		_, err := s.service.TriggerWorkflow(s.ctx)
		s.ErrorIs(err, startErr)
	})

	s.Run("flow fails", func() {
		flowErr := &rpc.RPCError{Category: rpc.CategoryFlowFailed, Message: "Counterparty rejected the proposal"}
		s.expectStart(resolved(nil, flowErr), nil)

		_, err := s.service.TriggerWorkflow(s.ctx)
		s.Equal("Counterparty rejected the proposal", rpc.Message(err))
	})
	s.Equal(2.0, testutil.ToFloat64(s.metrics.WorkflowsTotal.WithLabelValues("error")))
}

func (s *ServiceSuite) TestTriggerWorkflow_WaitIsUnboundedByDefault() {
	s.expectStart(stubFuture{fn: func(ctx context.Context) (*ledger.SignedTransaction, error) {
		_, hasDeadline := ctx.Deadline()
		s.False(hasDeadline)
		return &ledger.SignedTransaction{ID: "FF"}, nil
	}}, nil)

	_, err := s.service.TriggerWorkflow(s.ctx)
	s.NoError(err)
}

func TestTriggerWorkflow_WaitTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockNodeClient(ctrl)
	svc := New(node, slog.New(slog.NewTextHandler(io.Discard, nil)), WithWorkflowWaitTimeout(20*time.Millisecond))

	node.EXPECT().StartFlowDynamic(gomock.Any(), gomock.Any(), gomock.Any()).Return(stubFuture{
		fn: func(ctx context.Context) (*ledger.SignedTransaction, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}, nil)

	start := time.Now()
	_, err := svc.TriggerWorkflow(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestToBO(t *testing.T) {
	state := ledger.HelloState{
		Sender:   partyA,
		Receiver: partyB,
		Message:  "hi",
		LinearID: ledger.UniqueIdentifier{ExternalID: "greeting", ID: ledger.NewUniqueIdentifier("").ID},
	}

	bo := ToBO(state, ledger.StatusConsumed)

	assert.Equal(t, models.HelloBO{
		LinearID: state.LinearID.String(),
		Sender:   "O=PartyA, L=London, C=GB",
		Receiver: "O=PartyB, L=New York, C=US",
		Message:  "hi",
		Status:   ledger.StatusConsumed,
	}, bo)
	assert.Equal(t, bo, ToBO(state, ledger.StatusConsumed))
}
