package service

import (
	"context"
	"time"

	"ledgergate/internal/demo/models"
	ledger "ledgergate/internal/ledger/models"
	"ledgergate/pkg/requestcontext"
)

// TriggerWorkflow starts SayHelloFlow and waits for its terminal outcome.
//
// The wait ends when the node reports the outcome, when ctx is done, or when
// the configured workflow wait timeout passes; without a timeout it is unbounded.
func (s *Service) TriggerWorkflow(ctx context.Context) (models.WorkflowResult, error) {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	future, err := s.node.StartFlowDynamic(ctx, ledger.FlowSayHello, ledger.CommandCreate)
	if err != nil {
		s.recordWorkflow("error", start)
		return models.WorkflowResult{}, err
	}

	waitCtx := ctx
	if s.workflowWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.workflowWait)
		defer cancel()
	}

	tx, err := future.ReturnValue(waitCtx)
	if err != nil {
		s.recordWorkflow("error", start)
		return models.WorkflowResult{}, err
	}

	if tx == nil {
		s.logger.InfoContext(ctx, models.NoCounterpartyMessage, "request_id", requestID)
		s.recordWorkflow(string(models.WorkflowNoCounterparty), start)
		return models.WorkflowResult{Outcome: models.WorkflowNoCounterparty}, nil
	}

	s.logger.InfoContext(ctx, "hello sent",
		"request_id", requestID,
		"secure_hash", tx.ID.String(),
	)
	s.recordWorkflow(string(models.WorkflowCompleted), start)
	return models.WorkflowResult{Outcome: models.WorkflowCompleted, TransactionID: tx.ID}, nil
}

func (s *Service) recordWorkflow(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordWorkflow(outcome, time.Since(start).Seconds())
	}
}
