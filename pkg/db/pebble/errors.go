package pebble

import "errors"

var (
	ErrClosed          = errors.New("kv-store: database is closed")
	ErrBatchDone       = errors.New("kv-store: batch already committed or closed")
	ErrIteratorInvalid = errors.New("kv-store: iterator is not positioned")
)

const (
	ErrInIteratorCreation = "create iterator: %v"
	ErrIteratorValue      = "read iterator value: %v"
)
