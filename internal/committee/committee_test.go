package committee

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAuthor(t *testing.T, seed byte) Author {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var id AccountID
	id[0] = seed
	return Author{AccountID: id, Key: pub}
}

func TestStaticProvider(t *testing.T) {
	a1 := makeAuthor(t, 1)
	a2 := makeAuthor(t, 2)
	provider := NewStatic([]Author{a1, a2})

	assert.Equal(t, uint32(2), provider.Size())

	found, ok := FindAuthor(provider, a2.AccountID)
	require.True(t, ok)
	assert.Equal(t, a2, found)
	assert.True(t, IsMember(provider, a1.AccountID))

	var unknown AccountID
	unknown[0] = 9
	_, ok = FindAuthor(provider, unknown)
	assert.False(t, ok)
	assert.False(t, IsMember(provider, unknown))
}

func TestStaticEthereumKeys(t *testing.T) {
	var id AccountID
	id[0] = 1
	keys := StaticEthereumKeys{id: [20]byte{0xaa}}

	addr, ok := keys.EthereumAddress(id)
	require.True(t, ok)
	assert.Equal(t, [20]byte{0xaa}, addr)

	var other AccountID
	other[0] = 2
	_, ok = keys.EthereumAddress(other)
	assert.False(t, ok)
}
