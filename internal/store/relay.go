package store

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/bramble/internal/bridge"
	"github.com/eigerco/bramble/pkg/db"
)

var relayStateKey = []byte{prefixRelayState}

// NewRelay creates a relay snapshot store
func NewRelay(kv db.KVStore) *Relay {
	return &Relay{db: kv}
}

// Relay persists the relay snapshot under a single key. Each save replaces
// the previous snapshot whole.
type Relay struct {
	db db.KVStore
}

func (r *Relay) SaveRelayState(state bridge.RelayState) error {
	encoded, err := scale.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding relay state: %w", err)
	}
	return r.db.Put(relayStateKey, encoded)
}

func (r *Relay) LoadRelayState() (bridge.RelayState, bool, error) {
	encoded, err := r.db.Get(relayStateKey)
	if errors.Is(err, db.ErrNotFound) {
		return bridge.RelayState{}, false, nil
	}
	if err != nil {
		return bridge.RelayState{}, false, fmt.Errorf("fetching relay state: %w", err)
	}

	var state bridge.RelayState
	if err := scale.Unmarshal(encoded, &state); err != nil {
		return bridge.RelayState{}, false, fmt.Errorf("decoding relay state: %w", err)
	}
	return state, true, nil
}
