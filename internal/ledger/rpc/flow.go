package rpc

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/tracer"
)

// FlowFuture is the awaitable outcome of a started flow.
type FlowFuture interface {
	ReturnValue(ctx context.Context) (*models.SignedTransaction, error)
}

var _ FlowFuture = (*FlowHandle)(nil)

// FlowHandle is a single-shot future for the outcome of a started flow.
type FlowHandle struct {
	ID       string
	FlowName string

	client *Client

	mu       sync.Mutex
	resolved bool
	tx       *models.SignedTransaction
	err      error
}

// ReturnValue blocks until the flow finishes or ctx is done. A nil transaction
// with a nil error means the flow completed without producing a transaction.
//
// Once the node has reported an outcome it is cached and returned by every
// later call; a ctx cancellation is not an outcome and leaves the handle
// awaitable.
func (h *FlowHandle) ReturnValue(ctx context.Context) (*models.SignedTransaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved {
		return h.tx, h.err
	}

	tx, final, err := h.poll(ctx)
	if final {
		h.resolved, h.tx, h.err = true, tx, err
		if h.client.metrics != nil {
			h.client.metrics.FlowResolved()
		}
	}
	return tx, err
}

// poll long-polls the node until it reports a terminal status.
func (h *FlowHandle) poll(ctx context.Context) (tx *models.SignedTransaction, final bool, err error) {
	c := h.client
	path := FlowResultPath(url.PathEscape(h.ID)) + "?" + url.Values{WaitParam: {c.pollWait.String()}}.Encode()

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, newError(CategoryTimeout, OpFlowResult, "gave up waiting for flow "+h.ID, err)
		}

		var res FlowResultResponse
		status, err := c.call(ctx, OpFlowResult, http.MethodGet, path, nil, &res,
			tracer.String(tracer.AttrFlowID, h.ID),
			tracer.String(tracer.AttrFlowName, h.FlowName),
		)
		if err != nil {
			// Node-side answers about the flow are final; connection and
			// session problems are not.
			switch CategoryOf(err) {
			case CategoryRejected, CategoryNode, CategoryBadData:
				return nil, true, err
			default:
				return nil, false, err
			}
		}
		if status == http.StatusAccepted || res.Status == FlowRunning {
			continue
		}
		if res.Status == FlowFailed || res.Error != "" {
			message := res.Error
			if message == "" {
				message = "flow " + h.ID + " failed"
			}
			return nil, true, newError(CategoryFlowFailed, OpFlowResult, message, nil)
		}
		return res.Transaction, true, nil
	}
}
