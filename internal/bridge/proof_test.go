package bridge

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/bramble/internal/committee"
)

func TestConfirmationProofRoundTrip(t *testing.T) {
	var sig [65]byte
	sig[0], sig[64] = 0x11, 0x1b
	var id committee.AccountID
	id[0] = 0x42

	encoded, err := EncodeConfirmationProof(7, sig, id)
	require.NoError(t, err)

	proof, err := DecodeConfirmationProof(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte(AddConfirmationContext), proof.Context)
	assert.Equal(t, uint32(7), proof.TxID)
	assert.Equal(t, sig, proof.Confirmation)
	assert.Equal(t, id, proof.AccountID)
}

func TestEthTxHashProofRoundTrip(t *testing.T) {
	var id committee.AccountID
	id[31] = 0x01
	hash := common.Hash{0xbe, 0xef}

	encoded, err := EncodeEthTxHashProof(3, hash, id)
	require.NoError(t, err)

	proof, err := DecodeEthTxHashProof(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte(AddEthTxHashContext), proof.Context)
	assert.Equal(t, uint32(3), proof.TxID)
	assert.Equal(t, hash, proof.EthTxHash)
	assert.Equal(t, id, proof.AccountID)
}

func TestCorroborationProofRoundTrip(t *testing.T) {
	var id committee.AccountID
	id[15] = 0x99

	encoded, err := EncodeCorroborationProof(9, true, false, id)
	require.NoError(t, err)

	proof, err := DecodeCorroborationProof(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte(AddCorroborationContext), proof.Context)
	assert.True(t, proof.TxSucceeded)
	assert.False(t, proof.TxHashValid)
	assert.Equal(t, id, proof.AccountID)
}

// Payloads of different kinds must never collide, even with identical ids
// and accounts, so a signature over one can never authorise another.
func TestProofContextsDisjoint(t *testing.T) {
	var id committee.AccountID
	confirmation, err := EncodeConfirmationProof(1, [65]byte{}, id)
	require.NoError(t, err)
	hashProof, err := EncodeEthTxHashProof(1, common.Hash{}, id)
	require.NoError(t, err)
	corroboration, err := EncodeCorroborationProof(1, false, false, id)
	require.NoError(t, err)

	assert.NotEqual(t, confirmation, hashProof)
	assert.NotEqual(t, confirmation, corroboration)
	assert.NotEqual(t, hashProof, corroboration)
}

func TestDecodeConfirmationProofGarbage(t *testing.T) {
	_, err := DecodeConfirmationProof([]byte{0x01, 0x02})
	assert.Error(t, err)
}
