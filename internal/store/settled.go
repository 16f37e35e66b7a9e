package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/bramble/internal/bridge"
	"github.com/eigerco/bramble/pkg/db"
)

// NewSettled creates a settled-transactions store
func NewSettled(kv db.KVStore) *Settled {
	return &Settled{db: kv}
}

// Settled is the durable settlement ledger. Each settled transaction is
// stored once under its id and never rewritten.
type Settled struct {
	db db.KVStore
}

// Record stores the outcome of a settled transaction. Settling the same id
// twice is a programming error and panics rather than overwriting history.
func (s *Settled) Record(txID uint32, data bridge.TransactionData) error {
	key := makeTxKey(prefixSettledTransaction, txID)
	if _, err := s.db.Get(key); err == nil {
		panic(fmt.Sprintf("store: transaction %d already settled", txID))
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("checking settled transaction %d: %w", txID, err)
	}

	encoded, err := scale.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding settled transaction %d: %w", txID, err)
	}
	return s.db.Put(key, encoded)
}

// Get returns the settled transaction for txID, if one exists.
func (s *Settled) Get(txID uint32) (bridge.TransactionData, bool, error) {
	encoded, err := s.db.Get(makeTxKey(prefixSettledTransaction, txID))
	if errors.Is(err, db.ErrNotFound) {
		return bridge.TransactionData{}, false, nil
	}
	if err != nil {
		return bridge.TransactionData{}, false, fmt.Errorf("fetching settled transaction %d: %w", txID, err)
	}

	var data bridge.TransactionData
	if err := scale.Unmarshal(encoded, &data); err != nil {
		return bridge.TransactionData{}, false, fmt.Errorf("decoding settled transaction %d: %w", txID, err)
	}
	return data, true, nil
}

// Iterate walks all settled transactions in ascending id order, stopping
// early if fn returns false.
func (s *Settled) Iterate(fn func(txID uint32, data bridge.TransactionData) bool) error {
	start := makeTxKey(prefixSettledTransaction, 0)
	end := makeTxKey(prefixSettledTransaction+1, 0)
	iter, err := s.db.NewIterator(start, end)
	if err != nil {
		return fmt.Errorf("creating settled transactions iterator: %w", err)
	}
	defer func() {
		_ = iter.Close()
	}()

	for iter.Next() {
		key := iter.Key()
		value, err := iter.Value()
		if err != nil {
			return err
		}
		var data bridge.TransactionData
		if err := scale.Unmarshal(value, &data); err != nil {
			return fmt.Errorf("decoding settled transaction: %w", err)
		}
		txID := binary.BigEndian.Uint32(key[1:])
		if !fn(txID, data) {
			return nil
		}
	}
	return nil
}
