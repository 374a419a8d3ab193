package service

import (
	"ledgergate/internal/demo/models"
	ledger "ledgergate/internal/ledger/models"
)

// ToBO projects a vault state and its status into the response shape.
func ToBO(state ledger.HelloState, status ledger.StateStatus) models.HelloBO {
	return models.HelloBO{
		LinearID: state.LinearID.String(),
		Sender:   state.Sender.String(),
		Receiver: state.Receiver.String(),
		Message:  state.Message,
		Status:   status,
	}
}
