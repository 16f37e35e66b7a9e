package store

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/bramble/internal/bridge"
	"github.com/eigerco/bramble/internal/committee"
	"github.com/eigerco/bramble/pkg/db/pebble"
)

func testTransactionData(seed byte) bridge.TransactionData {
	var sender committee.AccountID
	sender[0] = seed
	return bridge.TransactionData{
		FunctionName: []byte("publishRoot"),
		Params: []bridge.Param{
			{Type: []byte("bytes32"), Value: make([]byte, 32)},
			{Type: []byte("uint256"), Value: []byte("1735689600")},
		},
		Sender:      sender,
		EthTxHash:   common.Hash{seed, 0x01},
		TxSucceeded: true,
	}
}

func TestSettledRecordAndGet(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	settled := NewSettled(kv)

	_, ok, err := settled.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)

	want := testTransactionData(0xaa)
	require.NoError(t, settled.Record(1, want))

	got, ok, err := settled.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSettledRecordTwicePanics(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	settled := NewSettled(kv)

	require.NoError(t, settled.Record(7, testTransactionData(0x01)))
	assert.Panics(t, func() {
		_ = settled.Record(7, testTransactionData(0x02))
	})
}

func TestSettledIterateOrdered(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	settled := NewSettled(kv)

	for _, id := range []uint32{3, 1, 300, 2} {
		require.NoError(t, settled.Record(id, testTransactionData(byte(id))))
	}

	var seen []uint32
	require.NoError(t, settled.Iterate(func(txID uint32, _ bridge.TransactionData) bool {
		seen = append(seen, txID)
		return true
	}))
	assert.Equal(t, []uint32{1, 2, 3, 300}, seen)
}

func TestRelayStateRoundTrip(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	relay := NewRelay(kv)

	_, ok, err := relay.LoadRelayState()
	require.NoError(t, err)
	assert.False(t, ok)

	var sender committee.AccountID
	sender[31] = 0x1f
	want := bridge.RelayState{
		NextTxID:    42,
		SenderIndex: 5,
		Active: &bridge.ActiveTransaction{
			Request: bridge.RequestData{
				TxID:         42,
				FunctionName: []byte("triggerGrowth"),
				Params:       []bridge.Param{{Type: []byte("uint128"), Value: []byte("1000")}},
			},
			MsgHash:     common.Hash{0xde, 0xad},
			Expiry:      1735689600,
			EthTxParams: []bridge.Param{{Type: []byte("uint128"), Value: []byte("1000")}},
			Sender:      sender,
			Confirmations: []bridge.ConfirmationEntry{
				{Author: sender, Signature: [65]byte{0x01}},
			},
			ReplayAttempt: 1,
		},
		Queue: []bridge.RequestData{
			{TxID: 43, FunctionName: []byte("publishRoot")},
		},
	}
	require.NoError(t, relay.SaveRelayState(want))

	got, ok, err := relay.LoadRelayState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestPersistenceSettleAndSave(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	p := NewPersistence(kv)

	data := testTransactionData(0x07)
	state := bridge.RelayState{
		NextTxID:    9,
		SenderIndex: 3,
		Queue:       []bridge.RequestData{{TxID: 9, FunctionName: []byte("publishRoot")}},
	}
	require.NoError(t, p.SettleAndSave(8, data, state))

	// Both writes landed in the one commit.
	got, ok, err := p.Get(8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data, got)

	loaded, ok, err := p.LoadRelayState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, loaded)
}

func TestPersistenceSettleAndSaveTwicePanics(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	p := NewPersistence(kv)

	require.NoError(t, p.SettleAndSave(5, testTransactionData(0x01), bridge.RelayState{NextTxID: 5}))
	assert.Panics(t, func() {
		_ = p.SettleAndSave(5, testTransactionData(0x02), bridge.RelayState{NextTxID: 6})
	})

	// Record through the embedded ledger trips the same guard.
	assert.Panics(t, func() {
		_ = p.Record(5, testTransactionData(0x03))
	})
}

func TestRelayStateSaveReplaces(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, kv.Close())
	}()
	relay := NewRelay(kv)

	require.NoError(t, relay.SaveRelayState(bridge.RelayState{NextTxID: 1}))
	require.NoError(t, relay.SaveRelayState(bridge.RelayState{NextTxID: 2}))

	got, ok, err := relay.LoadRelayState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(2), got.NextTxID)
	assert.Nil(t, got.Active)
}
