package db

import "errors"

// ErrNotFound is returned by Get when the key does not exist. Implementations
// must map their backend's not-found error to this sentinel so that
// repositories can test for absence without knowing the backend.
var ErrNotFound = errors.New("db: key not found")

// KVStore is the key-value storage used by the relay repositories. All
// persisted relay data goes through this interface; nothing below it is
// visible to the core.
type KVStore interface {
	Writer
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	NewBatch() Batch
	NewIterator(start, end []byte) (Iterator, error)
	Close() error
}

type Writer interface {
	Put(key []byte, value []byte) error
}

// Batch groups writes that must land atomically, such as a relay state
// snapshot together with its settled-transaction row.
type Batch interface {
	Writer
	Delete(key []byte) error
	Commit() error
	Close() error
}

// Iterator provides sequential access over a range of key-value pairs.
// Iterators must be closed after use.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}
