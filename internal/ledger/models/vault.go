package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HelloStateType is the contract state type name the vault is queried for.
const HelloStateType = "net.corda.demo.node.state.HelloState"

// StateStatus selects states by consumption status.
type StateStatus string

const (
	StatusUnconsumed StateStatus = "UNCONSUMED"
	StatusConsumed   StateStatus = "CONSUMED"
	StatusAll        StateStatus = "ALL"
)

// ParseStateStatus accepts the three statuses plus ACTIVE, an alias of UNCONSUMED.
func ParseStateStatus(s string) (StateStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNCONSUMED", "ACTIVE":
		return StatusUnconsumed, nil
	case "CONSUMED":
		return StatusConsumed, nil
	case "ALL":
		return StatusAll, nil
	default:
		return "", fmt.Errorf("unknown state status %q", s)
	}
}

// UniqueIdentifier is the linear id of a state: an optional external id plus a UUID.
type UniqueIdentifier struct {
	ExternalID string    `json:"externalId,omitempty"`
	ID         uuid.UUID `json:"id"`
}

// NewUniqueIdentifier generates a fresh linear id.
func NewUniqueIdentifier(externalID string) UniqueIdentifier {
	return UniqueIdentifier{ExternalID: externalID, ID: uuid.New()}
}

func (u UniqueIdentifier) String() string {
	if u.ExternalID != "" {
		return u.ExternalID + "_" + u.ID.String()
	}
	return u.ID.String()
}

// HelloState is the record kept in the vault: a greeting from one party to another.
type HelloState struct {
	Sender   X500Name         `json:"sender"`
	Receiver X500Name         `json:"receiver"`
	Message  string           `json:"message"`
	LinearID UniqueIdentifier `json:"linearId"`
}

func (s HelloState) String() string {
	return fmt.Sprintf("HelloState(linearId=%s, sender=%s, receiver=%s, message=%q)",
		s.LinearID, s.Sender, s.Receiver, s.Message)
}

// StateRef points at one output of a transaction.
type StateRef struct {
	TxHash SecureHash `json:"txhash"`
	Index  int        `json:"index"`
}

// TransactionState wraps state data with its governing contract and notary.
type TransactionState struct {
	Data     HelloState `json:"data"`
	Contract string     `json:"contract"`
	Notary   X500Name   `json:"notary"`
}

// StateAndRef is a state together with the reference it was produced at.
type StateAndRef struct {
	State TransactionState `json:"state"`
	Ref   StateRef         `json:"ref"`
}

// StateMetadata is vault bookkeeping for one state, index-aligned with Page.States.
type StateMetadata struct {
	Ref                    StateRef    `json:"ref"`
	ContractStateClassName string      `json:"contractStateClassName"`
	RecordedTime           time.Time   `json:"recordedTime"`
	ConsumedTime           *time.Time  `json:"consumedTime,omitempty"`
	Status                 StateStatus `json:"status"`
}

// PageSpecification selects one page of vault results; page numbers start at 1.
type PageSpecification struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// LinearStateQueryCriteria filters linear states; a zero LinearIDs list means any.
type LinearStateQueryCriteria struct {
	Status    StateStatus        `json:"status"`
	LinearIDs []UniqueIdentifier `json:"linearIds,omitempty"`
}

// Page is one page of vault query results.
type Page struct {
	States               []StateAndRef   `json:"states"`
	StatesMetadata       []StateMetadata `json:"statesMetadata"`
	TotalStatesAvailable int64           `json:"totalStatesAvailable"`
}

// SecureHash is the hex-encoded SHA-256 identifying a transaction.
type SecureHash string

func (h SecureHash) String() string { return string(h) }

// SignedTransaction is the terminal artifact of a workflow that produced a transaction.
type SignedTransaction struct {
	ID      SecureHash   `json:"id"`
	Outputs []HelloState `json:"outputs,omitempty"`
	Signers []X500Name   `json:"signers,omitempty"`
	Notary  X500Name     `json:"notary"`
}

// Workflow names and command arguments understood by the node.
const (
	FlowSayHello  = "SayHelloFlow"
	CommandCreate = "HelloContract.Commands.Create"
)
