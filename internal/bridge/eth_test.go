package bridge

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageHashDeterministic(t *testing.T) {
	params := []Param{
		{Type: []byte("bytes32"), Value: make([]byte, 32)},
		{Type: []byte("uint256"), Value: []byte("1735689600")},
		{Type: []byte("uint32"), Value: []byte("7")},
	}
	first, err := BuildMessageHash(params)
	require.NoError(t, err)
	second, err := BuildMessageHash(params)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A change to any value must change the digest.
	params[2].Value = []byte("8")
	third, err := BuildMessageHash(params)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestBuildMessageHashRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		err    error
	}{
		{
			name:   "unknown type",
			params: []Param{{Type: []byte("int8"), Value: []byte("1")}},
			err:    ErrUnknownParamType,
		},
		{
			name:   "non numeric uint",
			params: []Param{{Type: []byte("uint256"), Value: []byte("0x10")}},
			err:    ErrInvalidUint,
		},
		{
			name:   "negative uint",
			params: []Param{{Type: []byte("uint256"), Value: []byte("-5")}},
			err:    ErrInvalidUint,
		},
		{
			name:   "uint32 overflow",
			params: []Param{{Type: []byte("uint32"), Value: []byte("4294967296")}},
			err:    ErrInvalidUint,
		},
		{
			name:   "short bytes32",
			params: []Param{{Type: []byte("bytes32"), Value: []byte("short")}},
			err:    ErrInvalidBytes,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildMessageHash(tc.params)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestGenerateSendCalldata(t *testing.T) {
	tx := &ActiveTransaction{
		Request: RequestData{
			TxID:         1,
			FunctionName: []byte("publishRoot"),
		},
		EthTxParams: []Param{
			{Type: []byte("bytes32"), Value: make([]byte, 32)},
			{Type: []byte("uint256"), Value: []byte("1735689600")},
			{Type: []byte("uint32"), Value: []byte("1")},
		},
		Confirmations: []ConfirmationEntry{
			{Signature: [65]byte{0x01}},
			{Signature: [65]byte{0x02}},
		},
	}
	calldata, err := GenerateSendCalldata(tx)
	require.NoError(t, err)

	// 4-byte selector for publishRoot(bytes32,uint256,uint32,bytes).
	selector := crypto.Keccak256([]byte("publishRoot(bytes32,uint256,uint32,bytes)"))[:4]
	require.Greater(t, len(calldata), 4)
	assert.Equal(t, selector, calldata[:4])
}

func TestGenerateCorroborateCalldata(t *testing.T) {
	calldata, err := GenerateCorroborateCalldata(12, 1735689600)
	require.NoError(t, err)

	selector := crypto.Keccak256([]byte("corroborate(uint32,uint256)"))[:4]
	require.Greater(t, len(calldata), 4)
	assert.Equal(t, selector, calldata[:4])
}

func TestVerifyConfirmation(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	params := []Param{{Type: []byte("uint32"), Value: []byte("5")}}
	msgHash, err := BuildMessageHash(params)
	require.NoError(t, err)

	rawSig, err := crypto.Sign(msgHash[:], key)
	require.NoError(t, err)
	var sig [65]byte
	copy(sig[:], rawSig)

	require.NoError(t, VerifyConfirmation(msgHash, sig, address))

	// Wrong signer.
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	err = VerifyConfirmation(msgHash, sig, crypto.PubkeyToAddress(other.PublicKey))
	assert.ErrorIs(t, err, ErrInvalidECDSASignature)

	// Corrupted signature.
	sig[0] ^= 0xff
	err = VerifyConfirmation(msgHash, sig, address)
	assert.ErrorIs(t, err, ErrInvalidECDSASignature)
}
