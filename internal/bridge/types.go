// Package bridge implements the transaction-relay core of the Ethereum
// bridge: the single active-transaction state machine, the request queue
// feeding it, and the quorum logic that settles each transaction from the
// committee's confirmations and corroborations.
package bridge

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/eigerco/bramble/internal/committee"
)

const (
	FunctionNameLimit  = 32  // max chars in a bridge contract function name
	ParamsLimit        = 5   // max params, not counting expiry and tx id
	TypeNameLimit      = 7   // max chars in a Solidity type name
	ValueLimit         = 130 // max chars in an encoded value
	ConfirmationsLimit = 100 // cap on stored confirmations/corroborations
)

// Param is a single (type name, encoded value) pair of a bridge contract
// call. Integer values are carried as decimal ASCII, bytes values raw.
type Param struct {
	Type  []byte
	Value []byte
}

// RequestData is a not-yet-settled request to publish a call to the bridge
// contract. Owned by the queue or by the active slot, never both.
type RequestData struct {
	TxID         uint32
	FunctionName []byte
	Params       []Param
}

// TransactionData is the permanent record of a settled transaction. Params
// holds the extended parameter list the contract call was built from.
type TransactionData struct {
	FunctionName []byte
	Params       []Param
	Sender       committee.AccountID
	EthTxHash    common.Hash
	TxSucceeded  bool
}

// ConfirmationEntry is one committee member's ECDSA confirmation of the
// active transaction's message hash.
type ConfirmationEntry struct {
	Author    committee.AccountID
	Signature [65]byte
}

// ActiveTransaction is the single in-flight bridge transaction and every
// signal collected for it so far. At most one instance exists.
type ActiveTransaction struct {
	Request     RequestData
	MsgHash     common.Hash
	Expiry      uint64
	EthTxParams []Param // request params extended with expiry and tx id
	Sender      committee.AccountID
	EthTxHash   common.Hash

	Confirmations             []ConfirmationEntry
	SuccessCorroborations     []committee.AccountID
	FailureCorroborations     []committee.AccountID
	ValidHashCorroborations   []committee.AccountID
	InvalidHashCorroborations []committee.AccountID

	TxSucceeded   bool
	ReplayAttempt uint16
}

func (t *ActiveTransaction) hasConfirmation(id committee.AccountID) bool {
	for _, c := range t.Confirmations {
		if c.Author == id {
			return true
		}
	}
	return false
}

func (t *ActiveTransaction) clone() ActiveTransaction {
	c := *t
	c.Request.FunctionName = append([]byte(nil), t.Request.FunctionName...)
	c.Request.Params = cloneParams(t.Request.Params)
	c.EthTxParams = cloneParams(t.EthTxParams)
	c.Confirmations = append([]ConfirmationEntry(nil), t.Confirmations...)
	c.SuccessCorroborations = append([]committee.AccountID(nil), t.SuccessCorroborations...)
	c.FailureCorroborations = append([]committee.AccountID(nil), t.FailureCorroborations...)
	c.ValidHashCorroborations = append([]committee.AccountID(nil), t.ValidHashCorroborations...)
	c.InvalidHashCorroborations = append([]committee.AccountID(nil), t.InvalidHashCorroborations...)
	return c
}

func cloneParams(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{
			Type:  append([]byte(nil), p.Type...),
			Value: append([]byte(nil), p.Value...),
		}
	}
	return out
}

func containsAccount(list []committee.AccountID, id committee.AccountID) bool {
	for _, a := range list {
		if a == id {
			return true
		}
	}
	return false
}

// State of the active transaction slot.
type State uint8

const (
	StateIdle State = iota
	StateCollectingConfirmations
	StateAwaitingCorroboration
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCollectingConfirmations:
		return "CollectingConfirmations"
	case StateAwaitingCorroboration:
		return "AwaitingCorroboration"
	default:
		return "Unknown"
	}
}
