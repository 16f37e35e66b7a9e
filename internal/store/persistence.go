package store

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/bramble/internal/bridge"
	"github.com/eigerco/bramble/pkg/db"
)

// NewPersistence creates the combined bridge persistence over one store.
func NewPersistence(kv db.KVStore) *Persistence {
	return &Persistence{Settled: NewSettled(kv), Relay: NewRelay(kv), db: kv}
}

// Persistence bundles the settled ledger and the relay snapshot store over
// a single KVStore. Its combined commit keeps the two in lockstep: a
// settled row can never land without the snapshot that retired it.
type Persistence struct {
	*Settled
	*Relay
	db db.KVStore
}

// SettleAndSave writes the settled row and the relay snapshot in one batch.
// Either both land or neither does. Settling an id twice panics, matching
// Record.
func (p *Persistence) SettleAndSave(txID uint32, data bridge.TransactionData, state bridge.RelayState) error {
	key := makeTxKey(prefixSettledTransaction, txID)
	if _, err := p.db.Get(key); err == nil {
		panic(fmt.Sprintf("store: transaction %d already settled", txID))
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("checking settled transaction %d: %w", txID, err)
	}

	row, err := scale.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding settled transaction %d: %w", txID, err)
	}
	snapshot, err := scale.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding relay state: %w", err)
	}

	batch := p.db.NewBatch()
	defer func() {
		_ = batch.Close()
	}()
	if err := batch.Put(key, row); err != nil {
		return err
	}
	if err := batch.Put(relayStateKey, snapshot); err != nil {
		return err
	}
	return batch.Commit()
}
