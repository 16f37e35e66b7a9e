package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eigerco/bramble/internal/bridge"
	"github.com/eigerco/bramble/internal/committee"
	"github.com/eigerco/bramble/internal/offence"
	"github.com/eigerco/bramble/internal/store"
	"github.com/eigerco/bramble/pkg/db/pebble"
	"github.com/eigerco/bramble/pkg/log"
)

// CommitteeMemberInfo is one entry of the committee file.
type CommitteeMemberInfo struct {
	AccountID       string `json:"account_id"`
	Ed25519Pub      string `json:"ed25519_public_key"`
	EthereumAddress string `json:"ethereum_address"`
}

func loadCommittee(filename string) (*committee.Static, committee.StaticEthereumKeys, error) {
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading file: %w", err)
	}

	var members []CommitteeMemberInfo
	if err := json.Unmarshal(jsonData, &members); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	authors := make([]committee.Author, 0, len(members))
	keys := make(committee.StaticEthereumKeys, len(members))
	for i, m := range members {
		idBytes, err := hex.DecodeString(m.AccountID)
		if err != nil || len(idBytes) != 32 {
			return nil, nil, fmt.Errorf("member %d: bad account id", i)
		}
		pubBytes, err := hex.DecodeString(m.Ed25519Pub)
		if err != nil || len(pubBytes) != 32 {
			return nil, nil, fmt.Errorf("member %d: bad ed25519 public key", i)
		}
		addrBytes, err := hex.DecodeString(m.EthereumAddress)
		if err != nil || len(addrBytes) != 20 {
			return nil, nil, fmt.Errorf("member %d: bad ethereum address", i)
		}

		var id committee.AccountID
		copy(id[:], idBytes)
		var addr [20]byte
		copy(addr[:], addrBytes)
		authors = append(authors, committee.Author{AccountID: id, Key: pubBytes})
		keys[id] = addr
	}
	return committee.NewStatic(authors), keys, nil
}

// loggingReporter forwards offence records to the log. Deployments with an
// on-chain misbehavior pallet plug their own Reporter in here.
type loggingReporter struct {
	seen map[string]bool
}

func (r *loggingReporter) ReportOffence(reporters []committee.AccountID, record offence.Record) error {
	r.seen[offenceKey(record.Offenders, record.SessionIndex)] = true
	fraction := offence.SlashFraction(uint32(len(record.Offenders)), record.ValidatorSetCount)
	log.Offence.Warn().
		Str("type", record.Type.String()).
		Int("offenders", len(record.Offenders)).
		Float64("slash_fraction", fraction.Float64()).
		Int("reporters", len(reporters)).
		Msg("offence reported")
	return nil
}

func (r *loggingReporter) IsKnownOffence(offenders []committee.AccountID, sessionIndex uint32) bool {
	return r.seen[offenceKey(offenders, sessionIndex)]
}

func offenceKey(offenders []committee.AccountID, sessionIndex uint32) string {
	key := fmt.Sprintf("%d", sessionIndex)
	for _, id := range offenders {
		key += ":" + id.String()
	}
	return key
}

func main() {
	dataDir := flag.String("datadir", "data", "directory for the key-value store")
	keysFile := flag.String("keys", "committee.json", "committee members file")
	logLevel := flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	lifetime := flag.Duration("lifetime", 10*time.Minute, "transaction lifetime")
	flag.Parse()

	level, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *logLevel, err)
		os.Exit(1)
	}
	log.Init(log.Options{LogLevel: level, Type: log.ConsoleLogger})

	provider, keys, err := loadCommittee(*keysFile)
	if err != nil {
		log.Root.Fatal().Err(err).Msg("failed to load committee")
	}
	if provider.Size() == 0 {
		log.Root.Fatal().Msg("committee file has no members")
	}

	kv, err := pebble.Open(*dataDir)
	if err != nil {
		log.Root.Fatal().Err(err).Str("datadir", *dataDir).Msg("failed to open store")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Root.Error().Err(err).Msg("failed to close store")
		}
	}()

	persistence := store.NewPersistence(kv)
	relay, err := bridge.NewRelay(bridge.Config{
		Committee:    provider,
		EthereumKeys: keys,
		ResultHandler: bridge.ResultHandlerFunc(func(txID uint32, succeeded bool) error {
			log.Bridge.Info().Uint32("tx_id", txID).Bool("succeeded", succeeded).Msg("transaction result")
			return nil
		}),
		Misbehavior: &loggingReporter{seen: make(map[string]bool)},
		Ledger:      persistence,
		StateStore:  persistence,
		TxLifetime:  *lifetime,
	})
	if err != nil {
		log.Root.Fatal().Err(err).Msg("failed to create relay")
	}

	var count int
	err = persistence.Iterate(func(txID uint32, data bridge.TransactionData) bool {
		count++
		log.Store.Debug().
			Uint32("tx_id", txID).
			Bool("succeeded", data.TxSucceeded).
			Str("function", string(data.FunctionName)).
			Msg("settled transaction")
		return true
	})
	if err != nil {
		log.Root.Fatal().Err(err).Msg("failed to read settled transactions")
	}

	log.Root.Info().
		Uint32("committee_size", provider.Size()).
		Uint32("next_tx_id", relay.NextTxID()).
		Int("queued", relay.QueueLen()).
		Int("settled", count).
		Stringer("state", relay.State()).
		Msg("bridge relay ready")
}
