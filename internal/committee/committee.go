// Package committee tracks the validator committee that authorises bridge
// operations: member identities, the Ethereum keys they sign confirmations
// with, and the quorum thresholds applied to their signals.
package committee

import (
	"crypto/ed25519"
	"encoding/hex"
)

// AccountID identifies a committee member on the host chain.
type AccountID [32]byte

func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// Author is a committee member eligible to sign bridge signals. Key is the
// ed25519 public key its proofs are verified against.
type Author struct {
	AccountID AccountID
	Key       ed25519.PublicKey
}

// Provider supplies the current committee. The set may rotate between
// sessions; callers must not cache it across operations.
type Provider interface {
	Authors() []Author
	Size() uint32
}

// EthereumKeyRegistry maps a committee member to the Ethereum address their
// ECDSA confirmations recover to.
type EthereumKeyRegistry interface {
	EthereumAddress(id AccountID) ([20]byte, bool)
}

// FindAuthor returns the committee entry for id, if id is a current member.
func FindAuthor(p Provider, id AccountID) (Author, bool) {
	for _, a := range p.Authors() {
		if a.AccountID == id {
			return a, true
		}
	}
	return Author{}, false
}

// IsMember reports whether id belongs to the current committee.
func IsMember(p Provider, id AccountID) bool {
	_, ok := FindAuthor(p, id)
	return ok
}

// Static is a fixed committee, used by tests and by deployments where the
// member set is loaded from configuration.
type Static struct {
	authors []Author
}

func NewStatic(authors []Author) *Static {
	return &Static{authors: authors}
}

func (s *Static) Authors() []Author {
	return s.authors
}

func (s *Static) Size() uint32 {
	return uint32(len(s.authors))
}

// StaticEthereumKeys is a fixed account-to-Ethereum-address registry.
type StaticEthereumKeys map[AccountID][20]byte

func (k StaticEthereumKeys) EthereumAddress(id AccountID) ([20]byte, bool) {
	addr, ok := k[id]
	return addr, ok
}
