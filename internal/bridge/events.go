package bridge

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/eigerco/bramble/internal/committee"
)

// Events carries optional notification hooks. A nil Events or a nil field is
// a no-op, so callers subscribe only to what they need.
type Events struct {
	PublishToEthereum    func(txID uint32, functionName []byte)
	ConfirmationAdded    func(txID uint32, author committee.AccountID)
	TransactionSubmitted func(txID uint32, ethTxHash common.Hash)
	CorroborationResult  func(txID uint32, succeeded bool)
	ActiveRequestRetried func(txID uint32, attempt uint16)
	OffenceReported      func(txID uint32, offenders []committee.AccountID)
}

func (e *Events) emitPublished(txID uint32, functionName []byte) {
	if e != nil && e.PublishToEthereum != nil {
		e.PublishToEthereum(txID, functionName)
	}
}

func (e *Events) emitConfirmation(txID uint32, author committee.AccountID) {
	if e != nil && e.ConfirmationAdded != nil {
		e.ConfirmationAdded(txID, author)
	}
}

func (e *Events) emitSubmitted(txID uint32, ethTxHash common.Hash) {
	if e != nil && e.TransactionSubmitted != nil {
		e.TransactionSubmitted(txID, ethTxHash)
	}
}

func (e *Events) emitResult(txID uint32, succeeded bool) {
	if e != nil && e.CorroborationResult != nil {
		e.CorroborationResult(txID, succeeded)
	}
}

func (e *Events) emitRetried(txID uint32, attempt uint16) {
	if e != nil && e.ActiveRequestRetried != nil {
		e.ActiveRequestRetried(txID, attempt)
	}
}

func (e *Events) emitOffence(txID uint32, offenders []committee.AccountID) {
	if e != nil && e.OffenceReported != nil {
		e.OffenceReported(txID, offenders)
	}
}
