package bridge

import (
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/ethereum/go-ethereum/common"

	"github.com/eigerco/bramble/internal/committee"
)

// Every proof payload is prefixed with a context tag so a signature over one
// message kind can never be replayed as another. The tags and field order
// are a wire contract shared by every validator; changing either breaks
// cross-validator signature verification.
const (
	AddConfirmationContext  = "EthBridgeConfirmation"
	AddEthTxHashContext     = "EthBridgeEthTxHash"
	AddCorroborationContext = "EthBridgeCorroboration"
)

// ConfirmationProof is the payload an author signs when submitting an ECDSA
// confirmation for the active transaction.
type ConfirmationProof struct {
	Context      []byte
	TxID         uint32
	Confirmation [65]byte
	AccountID    committee.AccountID
}

// EthTxHashProof is the payload the sender signs when recording the hash of
// the dispatched Ethereum transaction.
type EthTxHashProof struct {
	Context   []byte
	TxID      uint32
	EthTxHash common.Hash
	AccountID committee.AccountID
}

// CorroborationProof is the payload an author signs when attesting the
// observed outcome of a submitted transaction.
type CorroborationProof struct {
	Context     []byte
	TxID        uint32
	TxSucceeded bool
	TxHashValid bool
	AccountID   committee.AccountID
}

func EncodeConfirmationProof(txID uint32, confirmation [65]byte, id committee.AccountID) ([]byte, error) {
	return scale.Marshal(ConfirmationProof{
		Context:      []byte(AddConfirmationContext),
		TxID:         txID,
		Confirmation: confirmation,
		AccountID:    id,
	})
}

func DecodeConfirmationProof(data []byte) (ConfirmationProof, error) {
	var proof ConfirmationProof
	if err := scale.Unmarshal(data, &proof); err != nil {
		return ConfirmationProof{}, err
	}
	return proof, nil
}

func EncodeEthTxHashProof(txID uint32, ethTxHash common.Hash, id committee.AccountID) ([]byte, error) {
	return scale.Marshal(EthTxHashProof{
		Context:   []byte(AddEthTxHashContext),
		TxID:      txID,
		EthTxHash: ethTxHash,
		AccountID: id,
	})
}

func DecodeEthTxHashProof(data []byte) (EthTxHashProof, error) {
	var proof EthTxHashProof
	if err := scale.Unmarshal(data, &proof); err != nil {
		return EthTxHashProof{}, err
	}
	return proof, nil
}

func EncodeCorroborationProof(txID uint32, txSucceeded, txHashValid bool, id committee.AccountID) ([]byte, error) {
	return scale.Marshal(CorroborationProof{
		Context:     []byte(AddCorroborationContext),
		TxID:        txID,
		TxSucceeded: txSucceeded,
		TxHashValid: txHashValid,
		AccountID:   id,
	})
}

func DecodeCorroborationProof(data []byte) (CorroborationProof, error) {
	var proof CorroborationProof
	if err := scale.Unmarshal(data, &proof); err != nil {
		return CorroborationProof{}, err
	}
	return proof, nil
}
