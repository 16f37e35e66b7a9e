package bridge

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/eigerco/bramble/internal/committee"
	"github.com/eigerco/bramble/internal/offence"
	"github.com/eigerco/bramble/pkg/log"
)

var functionNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ResultHandler receives the final outcome of every published transaction.
type ResultHandler interface {
	OnResult(txID uint32, succeeded bool) error
}

// ResultHandlerFunc adapts a function to the ResultHandler interface.
type ResultHandlerFunc func(txID uint32, succeeded bool) error

func (f ResultHandlerFunc) OnResult(txID uint32, succeeded bool) error {
	return f(txID, succeeded)
}

// RelayState is the persisted snapshot of a Relay. Active is nil when no
// transaction occupies the slot.
type RelayState struct {
	NextTxID    uint32
	SenderIndex uint32
	Active      *ActiveTransaction
	Queue       []RequestData
}

// StateStore persists relay snapshots across restarts.
type StateStore interface {
	SaveRelayState(state RelayState) error
	LoadRelayState() (RelayState, bool, error)
}

// Config carries the relay's collaborators. Committee, EthereumKeys, Ledger
// and ResultHandler are required; the rest are optional.
type Config struct {
	Committee     committee.Provider
	EthereumKeys  committee.EthereumKeyRegistry
	ResultHandler ResultHandler
	Misbehavior   offence.Reporter
	Ledger        SettlementLedger
	StateStore    StateStore

	MaxQueuedRequests uint32
	TxLifetime        time.Duration

	// SessionIndex labels offence records; defaults to a constant zero.
	SessionIndex func() uint32
	// Now supplies wall time for expiry stamping; defaults to time.Now.
	Now func() time.Time

	Events *Events
}

// Relay owns the request queue and the single active transaction slot.
// All exported methods are safe for concurrent use and each one either
// completes fully or leaves the relay untouched.
type Relay struct {
	mu          sync.Mutex
	cfg         Config
	queue       *RequestQueue
	active      *ActiveTransaction
	nextTxID    uint32
	senderIndex uint32
	lifetime    time.Duration
	now         func() time.Time
}

func NewRelay(cfg Config) (*Relay, error) {
	if cfg.Committee == nil {
		return nil, errors.New("bridge: committee provider is required")
	}
	if cfg.EthereumKeys == nil {
		return nil, errors.New("bridge: ethereum key registry is required")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("bridge: settlement ledger is required")
	}
	if cfg.ResultHandler == nil {
		return nil, errors.New("bridge: result handler is required")
	}
	if cfg.MaxQueuedRequests == 0 {
		cfg.MaxQueuedRequests = 64
	}
	if cfg.TxLifetime <= 0 {
		cfg.TxLifetime = 10 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	r := &Relay{
		cfg:      cfg,
		queue:    NewRequestQueue(int(cfg.MaxQueuedRequests)),
		lifetime: cfg.TxLifetime,
		now:      now,
	}
	if cfg.StateStore != nil {
		state, ok, err := cfg.StateStore.LoadRelayState()
		if err != nil {
			return nil, fmt.Errorf("bridge: loading relay state: %w", err)
		}
		if ok {
			r.nextTxID = state.NextTxID
			r.senderIndex = state.SenderIndex
			r.active = state.Active
			r.queue.restore(state.Queue)
			log.Bridge.Info().
				Uint32("next_tx_id", state.NextTxID).
				Int("queued", len(state.Queue)).
				Bool("active", state.Active != nil).
				Msg("restored relay state")
			if err := r.repairRestoredState(); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// repairRestoredState drops a restored active transaction whose id is
// already settled. The ledger write and the snapshot are separate stores,
// so a crash between them can leave a snapshot one step behind the ledger;
// the ledger is the authority and a settled id must never re-occupy the
// slot.
func (r *Relay) repairRestoredState() error {
	if r.active == nil {
		return nil
	}
	txID := r.active.Request.TxID
	_, settled, err := r.cfg.Ledger.Get(txID)
	if err != nil {
		return fmt.Errorf("bridge: checking restored transaction %d: %w", txID, err)
	}
	if !settled {
		return nil
	}
	log.Bridge.Warn().
		Uint32("tx_id", txID).
		Msg("dropping restored active transaction that is already settled")
	r.active = nil
	r.promoteNext()
	r.snapshot()
	return nil
}

func validateRequest(functionName []byte, params []Param) error {
	if len(functionName) == 0 {
		return ErrEmptyFunctionName
	}
	if len(functionName) > FunctionNameLimit {
		return ErrFunctionNameTooLong
	}
	if !functionNamePattern.Match(functionName) {
		return ErrFunctionNameInvalid
	}
	if len(params) > ParamsLimit {
		return ErrTooManyParams
	}
	for _, p := range params {
		if len(p.Type) > TypeNameLimit {
			return ErrTypeNameTooLong
		}
		if len(p.Value) > ValueLimit {
			return ErrValueTooLong
		}
		if _, err := abiType(p.Type); err != nil {
			return err
		}
		if _, err := abiValue(p.Type, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// PublishToEthereum accepts a transaction request, assigns it the next id
// and either activates it immediately or queues it behind the current
// active transaction. Validation happens before the id is allocated, so
// settled ids stay gapless.
func (r *Relay) PublishToEthereum(functionName []byte, params []Param) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateRequest(functionName, params); err != nil {
		return 0, err
	}
	if r.active != nil && r.queue.Full() {
		return 0, ErrQueueFull
	}

	req := RequestData{
		TxID:         r.nextTxID + 1,
		FunctionName: append([]byte(nil), functionName...),
		Params:       cloneParams(params),
	}

	if r.active == nil {
		active, err := r.activateRequest(req, 0, r.senderIndex)
		if err != nil {
			return 0, err
		}
		r.nextTxID = req.TxID
		r.active = active
		r.senderIndex++
	} else {
		// Full() was checked above so this cannot fail.
		if err := r.queue.Enqueue(req); err != nil {
			return 0, err
		}
		r.nextTxID = req.TxID
	}

	r.cfg.Events.emitPublished(req.TxID, req.FunctionName)
	log.Bridge.Info().
		Uint32("tx_id", req.TxID).
		Str("function", string(req.FunctionName)).
		Bool("active", r.active.Request.TxID == req.TxID).
		Msg("transaction request accepted")
	r.snapshot()
	return req.TxID, nil
}

// activateRequest stamps the request with an expiry, extends its params,
// computes the message hash and picks the sender for senderIndex. It does
// not mutate the relay; the caller installs the returned transaction and
// advances the sender rotation on success.
func (r *Relay) activateRequest(req RequestData, attempt uint16, senderIndex uint32) (*ActiveTransaction, error) {
	expiry := uint64(r.now().Add(r.lifetime).Unix())
	extended := extendParams(req.Params, expiry, req.TxID)
	msgHash, err := BuildMessageHash(extended)
	if err != nil {
		return nil, err
	}
	sender, err := r.senderAt(senderIndex)
	if err != nil {
		return nil, err
	}
	return &ActiveTransaction{
		Request:       req,
		MsgHash:       msgHash,
		Expiry:        expiry,
		EthTxParams:   extended,
		Sender:        sender,
		ReplayAttempt: attempt,
	}, nil
}

// senderAt rotates through the committee so dispatch duty is spread across
// authors.
func (r *Relay) senderAt(index uint32) (committee.AccountID, error) {
	authors := r.cfg.Committee.Authors()
	if len(authors) == 0 {
		return committee.AccountID{}, ErrAssigningSender
	}
	return authors[int(index)%len(authors)].AccountID, nil
}

// planPromotion walks a copy of the queue looking for the next request that
// can be activated. It returns the activated transaction (nil if the queue
// drained), the ids of requests that could not be activated, the remaining
// queue items and the sender index after the attempt. The relay itself is
// untouched, so a caller can persist the outcome before committing it.
func (r *Relay) planPromotion() (next *ActiveTransaction, failed []uint32, remaining []RequestData, senderIndex uint32) {
	remaining = r.queue.Items()
	senderIndex = r.senderIndex
	for len(remaining) > 0 {
		req := remaining[0]
		remaining = remaining[1:]
		active, err := r.activateRequest(req, 0, senderIndex)
		if err == nil {
			return active, failed, remaining, senderIndex + 1
		}
		log.Bridge.Error().Err(err).Uint32("tx_id", req.TxID).Msg("failed to activate queued transaction")
		failed = append(failed, req.TxID)
	}
	return nil, failed, remaining, senderIndex
}

// promoteNext activates queued requests until one succeeds or the queue
// drains. A request that cannot be activated is reported failed through the
// result handler rather than blocking those behind it.
func (r *Relay) promoteNext() {
	next, failed, remaining, senderIndex := r.planPromotion()
	r.active = next
	r.queue.restore(remaining)
	r.senderIndex = senderIndex
	if next != nil {
		log.Bridge.Info().Uint32("tx_id", next.Request.TxID).Msg("queued transaction activated")
	}
	r.notifyFailedActivations(failed)
}

func (r *Relay) notifyFailedActivations(failed []uint32) {
	for _, txID := range failed {
		if err := r.cfg.ResultHandler.OnResult(txID, false); err != nil {
			log.Bridge.Error().Err(err).Uint32("tx_id", txID).Msg("result handler rejected activation failure")
		}
	}
}

// SetTxLifetime adjusts how long newly activated transactions remain valid.
// The active transaction keeps its original expiry.
func (r *Relay) SetTxLifetime(lifetime time.Duration) error {
	if lifetime <= 0 {
		return errors.New("bridge: lifetime must be positive")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lifetime = lifetime
	return nil
}

// RemoveActiveRequest discards the active transaction without settling it
// and promotes the next queued request. Intended for operator intervention
// when a transaction is stuck.
func (r *Relay) RemoveActiveRequest() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return ErrNotActiveTransaction
	}
	txID := r.active.Request.TxID
	r.active = nil
	r.promoteNext()
	log.Bridge.Info().Uint32("tx_id", txID).Msg("active transaction removed")
	r.snapshot()
	return nil
}

// State reports which stage the active slot is in.
func (r *Relay) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Relay) stateLocked() State {
	switch {
	case r.active == nil:
		return StateIdle
	case !r.confirmed(r.active):
		return StateCollectingConfirmations
	default:
		return StateAwaitingCorroboration
	}
}

// ActiveTransaction returns a copy of the transaction occupying the slot.
func (r *Relay) ActiveTransaction() (ActiveTransaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return ActiveTransaction{}, false
	}
	return r.active.clone(), true
}

func (r *Relay) QueueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Len()
}

func (r *Relay) NextTxID() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextTxID + 1
}

// confirmed reports whether the active transaction has gathered a quorum of
// confirmations. The sender's signature is implicit, so the sender counts
// toward quorum without an entry in the list.
func (r *Relay) confirmed(tx *ActiveTransaction) bool {
	quorum := committee.OneThirdQuorum(r.cfg.Committee.Size())
	return uint32(len(tx.Confirmations))+1 >= quorum
}

func (r *Relay) sessionIndex() uint32 {
	if r.cfg.SessionIndex != nil {
		return r.cfg.SessionIndex()
	}
	return 0
}

// snapshot persists the relay state when a store is configured. Failures
// are logged, not propagated; the in-memory state remains authoritative.
func (r *Relay) snapshot() {
	if r.cfg.StateStore == nil {
		return
	}
	state := RelayState{
		NextTxID:    r.nextTxID,
		SenderIndex: r.senderIndex,
		Queue:       r.queue.Items(),
	}
	if r.active != nil {
		active := r.active.clone()
		state.Active = &active
	}
	if err := r.cfg.StateStore.SaveRelayState(state); err != nil {
		log.Bridge.Error().Err(err).Msg("failed to persist relay state")
	}
}
