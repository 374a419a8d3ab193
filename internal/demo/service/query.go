package service

import (
	"context"

	"ledgergate/internal/demo/models"
	ledger "ledgergate/internal/ledger/models"
	"ledgergate/pkg/requestcontext"
)

// HandlePagedQuery returns one page of hello states of every status.
//
// Page numbers start at 1. A non-positive page is answered Empty without
// asking the node; a page past the end of data is Empty as well. Node
// failures are returned unchanged and never retried.
func (s *Service) HandlePagedQuery(ctx context.Context, pageNumber int) (models.PageResult, error) {
	if pageNumber <= 0 {
		s.recordQuery(string(models.ReasonInvalidPage), 0)
		return models.Empty(models.ReasonInvalidPage), nil
	}

	criteria := ledger.LinearStateQueryCriteria{Status: ledger.StatusAll}
	paging := ledger.PageSpecification{PageNumber: pageNumber, PageSize: s.pageSize}

	page, err := s.node.VaultQueryByWithPagingSpec(ctx, ledger.HelloStateType, criteria, paging)
	if err != nil {
		s.recordQuery("error", 0)
		return models.PageResult{}, err
	}

	items := make([]models.HelloBO, 0, len(page.States))
	for i, sr := range page.States {
		s.logger.InfoContext(ctx, sr.State.Data.String(),
			"request_id", requestcontext.RequestID(ctx),
			"page", pageNumber,
		)
		items = append(items, ToBO(sr.State.Data, page.StatesMetadata[i].Status))
	}

	if len(items) == 0 {
		s.recordQuery(string(models.ReasonPastEnd), 0)
		return models.Empty(models.ReasonPastEnd), nil
	}
	s.recordQuery(string(models.OutcomeFound), len(items))
	return models.Found(items), nil
}

func (s *Service) recordQuery(outcome string, states int) {
	if s.metrics != nil {
		s.metrics.RecordPagedQuery(outcome, states)
	}
}
