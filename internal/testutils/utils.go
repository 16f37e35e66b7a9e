// Package testutils provides committee fixtures with real signing keys so
// tests exercise the same signature paths as production code.
package testutils

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/bramble/internal/committee"
)

func RandomHash(t *testing.T) [32]byte {
	var hash [32]byte
	_, err := rand.Read(hash[:])
	require.NoError(t, err)
	return hash
}

func RandomAccountID(t *testing.T) committee.AccountID {
	var id committee.AccountID
	_, err := rand.Read(id[:])
	require.NoError(t, err)
	return id
}

// TestAuthor is a committee member together with both private keys a real
// validator holds: the ed25519 key proofs are signed with and the secp256k1
// key confirmations are signed with.
type TestAuthor struct {
	committee.Author
	ProofKey    ed25519.PrivateKey
	EthereumKey *ecdsa.PrivateKey
}

func (a TestAuthor) EthereumAddress() [20]byte {
	return crypto.PubkeyToAddress(a.EthereumKey.PublicKey)
}

// SignProof signs a proof payload with the author's ed25519 key.
func (a TestAuthor) SignProof(payload []byte) []byte {
	return ed25519.Sign(a.ProofKey, payload)
}

// SignConfirmation produces the 65-byte ECDSA confirmation over msgHash.
func (a TestAuthor) SignConfirmation(t *testing.T, msgHash [32]byte) [65]byte {
	sig, err := crypto.Sign(msgHash[:], a.EthereumKey)
	require.NoError(t, err)
	var out [65]byte
	copy(out[:], sig)
	return out
}

// NewCommittee generates n authors with fresh key pairs and returns them
// with a provider and key registry wired for the relay.
func NewCommittee(t *testing.T, n int) ([]TestAuthor, *committee.Static, committee.StaticEthereumKeys) {
	authors := make([]TestAuthor, n)
	members := make([]committee.Author, n)
	keys := make(committee.StaticEthereumKeys, n)
	for i := range authors {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		ethKey, err := crypto.GenerateKey()
		require.NoError(t, err)

		var id committee.AccountID
		copy(id[:], pub)
		authors[i] = TestAuthor{
			Author:      committee.Author{AccountID: id, Key: pub},
			ProofKey:    priv,
			EthereumKey: ethKey,
		}
		members[i] = authors[i].Author
		keys[id] = authors[i].EthereumAddress()
	}
	return authors, committee.NewStatic(members), keys
}
