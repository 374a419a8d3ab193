package rpc

import (
	"time"

	"ledgergate/internal/ledger/models"
)

// Paths of the node RPC endpoints, relative to the node's base URL.
const (
	PathSession    = "/rpc/session"
	PathNodeInfo   = "/rpc/node-info"
	PathNetworkMap = "/rpc/network-map"
	PathVaultQuery = "/rpc/vault/query"
	PathFlows      = "/rpc/flows"
)

// FlowResultPath is the long-poll endpoint for a started flow.
func FlowResultPath(flowID string) string {
	return PathFlows + "/" + flowID + "/result"
}

// WaitParam is the query parameter bounding one long-poll round, as a Go duration.
const WaitParam = "wait"

// SessionResponse is returned by a successful login.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VaultQueryRequest asks for one page of states of a contract state type.
type VaultQueryRequest struct {
	ContractStateType string                          `json:"contractStateType" validate:"required"`
	Criteria          models.LinearStateQueryCriteria `json:"criteria"`
	Paging            models.PageSpecification        `json:"paging"`
}

// StartFlowRequest starts a flow by name.
type StartFlowRequest struct {
	FlowName string   `json:"flowName" validate:"required"`
	Args     []string `json:"args"`
}

// StartFlowResponse identifies the started flow.
type StartFlowResponse struct {
	FlowID string `json:"flowId"`
}

// FlowStatus is the lifecycle state of a flow as reported by the node.
type FlowStatus string

const (
	FlowRunning   FlowStatus = "RUNNING"
	FlowCompleted FlowStatus = "COMPLETED"
	FlowFailed    FlowStatus = "FAILED"
)

// FlowResultResponse is one long-poll answer. Transaction is null when a
// completed flow produced no transaction.
type FlowResultResponse struct {
	FlowID      string                    `json:"flowId"`
	Status      FlowStatus                `json:"status"`
	Transaction *models.SignedTransaction `json:"transaction"`
	Error       string                    `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx node answer. Request decoding
// failures carry their text in Description instead of Message.
type ErrorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	Description string `json:"error_description,omitempty"`
}
