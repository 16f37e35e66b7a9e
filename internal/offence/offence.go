// Package offence builds slashable-offence reports for committee members who
// attest inconsistently about bridge transactions, and forwards them to the
// chain's misbehavior handler.
package offence

import "github.com/eigerco/bramble/internal/committee"

type Type uint8

const (
	// ChallengeAttemptedOnSuccessfulTransaction covers members who attested
	// failure for a transaction the committee settled as successful.
	ChallengeAttemptedOnSuccessfulTransaction Type = iota
	// ChallengeAttemptedOnUnsuccessfulTransaction is the inverse direction.
	ChallengeAttemptedOnUnsuccessfulTransaction
	// InvalidEthereumRangeData covers members who submitted Ethereum block
	// range data that failed validation.
	InvalidEthereumRangeData
)

func (t Type) String() string {
	switch t {
	case ChallengeAttemptedOnSuccessfulTransaction:
		return "ChallengeAttemptedOnSuccessfulTransaction"
	case ChallengeAttemptedOnUnsuccessfulTransaction:
		return "ChallengeAttemptedOnUnsuccessfulTransaction"
	case InvalidEthereumRangeData:
		return "InvalidEthereumRangeData"
	default:
		return "Unknown"
	}
}

// Record is a single reported offence. SessionIndex doubles as the time slot
// used for duplicate-report detection.
type Record struct {
	SessionIndex      uint32
	ValidatorSetCount uint32
	Offenders         []committee.AccountID
	Type              Type
}

// Reporter is the external misbehavior-reporting collaborator.
type Reporter interface {
	ReportOffence(reporters []committee.AccountID, record Record) error
	IsKnownOffence(offenders []committee.AccountID, sessionIndex uint32) bool
}

// Perbill is a fraction expressed in parts per billion.
type Perbill uint32

const PerbillOne Perbill = 1_000_000_000

func (p Perbill) Float64() float64 {
	return float64(p) / float64(PerbillOne)
}

// SlashFraction returns the penalty fraction applied to each of k offenders
// in a validator set of size v: min(1, (3k/v)^2). The quadratic keeps small
// accidental minorities cheap while making coordinated groups approaching a
// third of the set lose everything.
func SlashFraction(offenders, validatorSetCount uint32) Perbill {
	if validatorSetCount == 0 {
		return 0
	}

	num := 9 * uint64(offenders) * uint64(offenders) * uint64(PerbillOne)
	den := uint64(validatorSetCount) * uint64(validatorSetCount)

	fraction := num / den
	if fraction > uint64(PerbillOne) {
		return PerbillOne
	}
	return Perbill(fraction)
}
