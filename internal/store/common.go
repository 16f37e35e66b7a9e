// Package store persists bridge state in the key-value store: the permanent
// record of settled transactions and the relay snapshot reloaded on restart.
package store

import "encoding/binary"

// Prefix constants for all store types
const (
	prefixSettledTransaction byte = iota + 1
	prefixRelayState
)

// makeTxKey creates a key from a prefix and a transaction id
func makeTxKey(prefix byte, txID uint32) []byte {
	key := make([]byte, 5)
	key[0] = prefix
	binary.BigEndian.PutUint32(key[1:], txID)
	return key
}
