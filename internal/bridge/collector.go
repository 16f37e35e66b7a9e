package bridge

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/eigerco/bramble/internal/committee"
	"github.com/eigerco/bramble/internal/offence"
	"github.com/eigerco/bramble/pkg/log"
)

// AddConfirmation records an author's ECDSA confirmation for the active
// transaction. Duplicate submissions, sender self-confirmations and
// confirmations beyond quorum are accepted and discarded so validators can
// submit without first inspecting the slot.
func (r *Relay) AddConfirmation(txID uint32, confirmation [65]byte, author committee.AccountID, proofSig []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.Request.TxID != txID {
		return ErrNotActiveTransaction
	}
	entry, ok := committee.FindAuthor(r.cfg.Committee, author)
	if !ok {
		return ErrUnknownAuthor
	}
	if err := verifyProof(entry, proofSig, func() ([]byte, error) {
		return EncodeConfirmationProof(txID, confirmation, author)
	}); err != nil {
		return err
	}

	tx := r.active
	// The sender's signature is implicit and quorum beyond the threshold
	// adds nothing, so these are quiet no-ops rather than errors.
	if author == tx.Sender || r.confirmed(tx) || tx.hasConfirmation(author) {
		return nil
	}
	if len(tx.Confirmations) >= ConfirmationsLimit {
		return ErrExceedsConfirmationLimit
	}

	address, ok := r.cfg.EthereumKeys.EthereumAddress(author)
	if !ok {
		return ErrUnknownEthereumKey
	}
	if err := VerifyConfirmation(tx.MsgHash, confirmation, address); err != nil {
		return err
	}

	tx.Confirmations = append(tx.Confirmations, ConfirmationEntry{Author: author, Signature: confirmation})
	r.cfg.Events.emitConfirmation(txID, author)
	log.Bridge.Debug().
		Uint32("tx_id", txID).
		Stringer("author", author).
		Int("confirmations", len(tx.Confirmations)).
		Msg("confirmation recorded")
	r.snapshot()
	return nil
}

// SetEthTxHash records the hash of the dispatched Ethereum transaction.
// Only the assigned sender may set it, and only once.
func (r *Relay) SetEthTxHash(txID uint32, ethTxHash common.Hash, author committee.AccountID, proofSig []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.Request.TxID != txID {
		return ErrNotActiveTransaction
	}
	entry, ok := committee.FindAuthor(r.cfg.Committee, author)
	if !ok {
		return ErrUnknownAuthor
	}
	if err := verifyProof(entry, proofSig, func() ([]byte, error) {
		return EncodeEthTxHashProof(txID, ethTxHash, author)
	}); err != nil {
		return err
	}

	tx := r.active
	if author != tx.Sender {
		return ErrEthTxHashMustBeSetBySender
	}
	if tx.EthTxHash != (common.Hash{}) {
		return ErrEthTxHashAlreadySet
	}

	tx.EthTxHash = ethTxHash
	r.cfg.Events.emitSubmitted(txID, ethTxHash)
	log.Bridge.Info().
		Uint32("tx_id", txID).
		Stringer("eth_tx_hash", ethTxHash).
		Msg("ethereum transaction hash recorded")
	r.snapshot()
	return nil
}

// AddCorroboration records an author's attestation of the submitted
// transaction's outcome. Reaching quorum on either outcome settles the
// transaction; a quorum that the recorded hash is invalid replays it with
// fresh parameters instead of settling a failure.
func (r *Relay) AddCorroboration(txID uint32, txSucceeded, txHashValid bool, author committee.AccountID, proofSig []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.Request.TxID != txID {
		return ErrNotActiveTransaction
	}
	entry, ok := committee.FindAuthor(r.cfg.Committee, author)
	if !ok {
		return ErrUnknownAuthor
	}
	if err := verifyProof(entry, proofSig, func() ([]byte, error) {
		return EncodeCorroborationProof(txID, txSucceeded, txHashValid, author)
	}); err != nil {
		return err
	}

	tx := r.active
	if !r.confirmed(tx) {
		return ErrNotAwaitingCorroboration
	}
	if tx.EthTxHash == (common.Hash{}) {
		return ErrTransactionNotSubmitted
	}

	agreeing, opposing := tx.SuccessCorroborations, tx.FailureCorroborations
	if !txSucceeded {
		agreeing, opposing = opposing, agreeing
	}
	if containsAccount(agreeing, author) {
		return nil
	}
	if containsAccount(opposing, author) {
		// Voting both ways on one transaction is an offence in its own
		// right, attributed at the moment of the contradiction.
		kind := offence.ChallengeAttemptedOnSuccessfulTransaction
		if txSucceeded {
			kind = offence.ChallengeAttemptedOnUnsuccessfulTransaction
		}
		r.reportOffence(tx, []committee.AccountID{author}, kind, author)
		return ErrContradictoryCorroboration
	}
	if len(agreeing) >= ConfirmationsLimit {
		return ErrExceedsConfirmationLimit
	}

	candidate := tx.clone()
	if txSucceeded {
		candidate.SuccessCorroborations = append(candidate.SuccessCorroborations, author)
	} else {
		candidate.FailureCorroborations = append(candidate.FailureCorroborations, author)
	}
	if txHashValid {
		if !containsAccount(candidate.ValidHashCorroborations, author) {
			candidate.ValidHashCorroborations = append(candidate.ValidHashCorroborations, author)
		}
	} else {
		if !containsAccount(candidate.InvalidHashCorroborations, author) {
			candidate.InvalidHashCorroborations = append(candidate.InvalidHashCorroborations, author)
		}
	}

	quorum := committee.OneThirdQuorum(r.cfg.Committee.Size())
	settled := uint32(len(candidate.SuccessCorroborations)) >= quorum ||
		uint32(len(candidate.FailureCorroborations)) >= quorum
	if !settled {
		r.active.SuccessCorroborations = candidate.SuccessCorroborations
		r.active.FailureCorroborations = candidate.FailureCorroborations
		r.active.ValidHashCorroborations = candidate.ValidHashCorroborations
		r.active.InvalidHashCorroborations = candidate.InvalidHashCorroborations
		log.Bridge.Debug().
			Uint32("tx_id", txID).
			Stringer("author", author).
			Bool("tx_succeeded", txSucceeded).
			Msg("corroboration recorded")
		r.snapshot()
		return nil
	}

	// finalize works on the clone so a handler failure leaves the live
	// transaction exactly as it was before this corroboration.
	if err := r.finalize(&candidate, quorum); err != nil {
		return err
	}
	r.snapshot()
	return nil
}

// finalize settles the transaction held in candidate. The result handler
// runs first so its failure aborts settlement without any state change.
func (r *Relay) finalize(candidate *ActiveTransaction, quorum uint32) error {
	txID := candidate.Request.TxID
	succeeded := uint32(len(candidate.SuccessCorroborations)) >= quorum
	invalidHash := uint32(len(candidate.InvalidHashCorroborations)) >= quorum

	if !succeeded && invalidHash {
		// The recorded hash was bogus, not the transaction itself. Replay
		// with a fresh expiry, hash and sender rather than settling.
		replay, err := r.activateRequest(candidate.Request, candidate.ReplayAttempt+1, r.senderIndex)
		if err != nil {
			return err
		}
		r.active = replay
		r.senderIndex++
		r.cfg.Events.emitRetried(txID, replay.ReplayAttempt)
		log.Bridge.Info().
			Uint32("tx_id", txID).
			Uint16("attempt", replay.ReplayAttempt).
			Msg("transaction replayed after invalid hash quorum")
		return nil
	}

	if err := r.cfg.ResultHandler.OnResult(txID, succeeded); err != nil {
		return fmt.Errorf("%w: %v", ErrHandleResultFailed, err)
	}

	// Authors who corroborated against the settled outcome committed an
	// offence; the sender acts as reporter.
	minority := candidate.FailureCorroborations
	kind := offence.ChallengeAttemptedOnSuccessfulTransaction
	if !succeeded {
		minority = candidate.SuccessCorroborations
		kind = offence.ChallengeAttemptedOnUnsuccessfulTransaction
	}
	r.reportOffence(candidate, minority, kind, candidate.Sender)

	ethTxHash := candidate.EthTxHash
	if succeeded && invalidHash {
		// The call landed but the recorded hash is disputed; keep the
		// outcome and drop the untrusted hash from the permanent record.
		ethTxHash = common.Hash{}
	}
	record := TransactionData{
		FunctionName: append([]byte(nil), candidate.Request.FunctionName...),
		Params:       cloneParams(candidate.EthTxParams),
		Sender:       candidate.Sender,
		EthTxHash:    ethTxHash,
		TxSucceeded:  succeeded,
	}

	// The promotion is planned before any persistence so the post-settle
	// snapshot can be committed in the same write as the settled row, and
	// so a failed write aborts with the relay untouched.
	next, failedActivations, remaining, senderIndex := r.planPromotion()

	if settler, ok := r.cfg.Ledger.(AtomicStore); ok && r.cfg.StateStore != nil {
		state := RelayState{
			NextTxID:    r.nextTxID,
			SenderIndex: senderIndex,
			Queue:       remaining,
		}
		if next != nil {
			active := next.clone()
			state.Active = &active
		}
		if err := settler.SettleAndSave(txID, record, state); err != nil {
			return err
		}
	} else if err := r.cfg.Ledger.Record(txID, record); err != nil {
		return err
	}

	r.active = next
	r.queue.restore(remaining)
	r.senderIndex = senderIndex
	r.cfg.Events.emitResult(txID, succeeded)
	log.Bridge.Info().
		Uint32("tx_id", txID).
		Bool("succeeded", succeeded).
		Msg("transaction settled")
	if next != nil {
		log.Bridge.Info().Uint32("tx_id", next.Request.TxID).Msg("queued transaction activated")
	}
	r.notifyFailedActivations(failedActivations)
	return nil
}

func (r *Relay) reportOffence(tx *ActiveTransaction, offenders []committee.AccountID, kind offence.Type, reporter committee.AccountID) {
	if r.cfg.Misbehavior == nil || len(offenders) == 0 {
		return
	}
	reported := offence.CreateAndReport(
		r.cfg.Misbehavior,
		reporter,
		offenders,
		r.sessionIndex(),
		r.cfg.Committee.Size(),
		kind,
	)
	if reported {
		r.cfg.Events.emitOffence(tx.Request.TxID, offenders)
	}
}

// verifyProof checks an ed25519 proof signature over the encoded payload
// produced by encode.
func verifyProof(author committee.Author, sig []byte, encode func() ([]byte, error)) error {
	payload, err := encode()
	if err != nil {
		return err
	}
	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(author.Key, payload, sig) {
		return ErrInvalidSignature
	}
	return nil
}
