package models

import (
	"net/http"

	ledger "ledgergate/internal/ledger/models"
)

// Fixed response texts.
const (
	HelloMessage          = "Hello! This Api Works! "
	InvalidPageMessage    = "Please specify a page number above 0."
	NoCounterpartyMessage = "No available Counter Party found! from list"
)

// Response keys of the identity endpoints.
const (
	KeyAllNodes = "allnodes"
	KeyMe       = "me"
)

// HelloBO is the flattened response projection of a HelloState and its vault status.
type HelloBO struct {
	LinearID string             `json:"linearId"`
	Sender   string             `json:"sender"`
	Receiver string             `json:"receiver"`
	Message  string             `json:"message"`
	Status   ledger.StateStatus `json:"status"`
}

// Outcome tags a paged query result.
type Outcome string

const (
	OutcomeFound Outcome = "found"
	OutcomeEmpty Outcome = "empty"
)

// EmptyReason says why a paged query found nothing. Callers of the HTTP
// surface see the same 400 for both; the reason only feeds logs and metrics.
type EmptyReason string

const (
	ReasonNone        EmptyReason = ""
	ReasonInvalidPage EmptyReason = "invalid_page"
	ReasonPastEnd     EmptyReason = "past_end"
)

// PageResult is either Found with at least one item or Empty with a reason.
type PageResult struct {
	Outcome Outcome
	Items   []HelloBO
	Reason  EmptyReason
}

func Found(items []HelloBO) PageResult {
	return PageResult{Outcome: OutcomeFound, Items: items}
}

func Empty(reason EmptyReason) PageResult {
	return PageResult{Outcome: OutcomeEmpty, Reason: reason}
}

// WorkflowOutcome tags the terminal outcome of a triggered workflow.
type WorkflowOutcome string

const (
	WorkflowCompleted      WorkflowOutcome = "completed"
	WorkflowNoCounterparty WorkflowOutcome = "no_counterparty"
)

// WorkflowResult carries the transaction id when Outcome is WorkflowCompleted.
type WorkflowResult struct {
	Outcome       WorkflowOutcome
	TransactionID ledger.SecureHash
}

// Envelope is the status and body every gateway operation answers with.
// A string Body is written as text; anything else as JSON.
type Envelope struct {
	Status int
	Body   any
}

func OK(body any) Envelope {
	return Envelope{Status: http.StatusOK, Body: body}
}

func BadRequest(message string) Envelope {
	return Envelope{Status: http.StatusBadRequest, Body: message}
}

func InternalError(message string) Envelope {
	return Envelope{Status: http.StatusInternalServerError, Body: message}
}
