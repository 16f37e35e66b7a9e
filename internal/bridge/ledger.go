package bridge

import (
	"fmt"
	"sync"
)

// SettlementLedger records the final outcome of every completed transaction.
// Entries are write-once: recording a transaction id twice is a programming
// error and implementations must panic rather than overwrite history.
type SettlementLedger interface {
	Record(txID uint32, data TransactionData) error
	Get(txID uint32) (TransactionData, bool, error)
}

// AtomicStore is implemented by persistence layers that can write a settled
// row together with a relay snapshot in one commit. When the configured
// ledger implements it and a StateStore is present, finalize uses the
// combined write so a crash can never land one write without the other.
type AtomicStore interface {
	SettleAndSave(txID uint32, data TransactionData, state RelayState) error
}

// MemoryLedger is an in-process SettlementLedger.
type MemoryLedger struct {
	mu      sync.Mutex
	settled map[uint32]TransactionData
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{settled: make(map[uint32]TransactionData)}
}

func (l *MemoryLedger) Record(txID uint32, data TransactionData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.settled[txID]; ok {
		panic(fmt.Sprintf("bridge: transaction %d already settled", txID))
	}
	l.settled[txID] = data
	return nil
}

func (l *MemoryLedger) Get(txID uint32) (TransactionData, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, ok := l.settled[txID]
	return data, ok, nil
}
