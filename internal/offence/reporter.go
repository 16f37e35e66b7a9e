package offence

import (
	"github.com/eigerco/bramble/internal/committee"
	"github.com/eigerco/bramble/pkg/log"
)

// CreateAndReport builds an offence record for the given offenders and
// forwards it through the reporter, unless an equivalent offence for the same
// offenders and session is already known. Report delivery is best effort:
// a failed report is logged and does not affect the caller's state.
// It returns true when a new offence was submitted.
func CreateAndReport(
	r Reporter,
	reporter committee.AccountID,
	offenders []committee.AccountID,
	sessionIndex uint32,
	validatorSetCount uint32,
	offenceType Type,
) bool {
	if len(offenders) == 0 {
		return false
	}

	if r.IsKnownOffence(offenders, sessionIndex) {
		return false
	}

	record := Record{
		SessionIndex:      sessionIndex,
		ValidatorSetCount: validatorSetCount,
		Offenders:         offenders,
		Type:              offenceType,
	}

	if err := r.ReportOffence([]committee.AccountID{reporter}, record); err != nil {
		log.Offence.Info().
			Err(err).
			Str("offence_type", offenceType.String()).
			Msg("error while reporting offence")
	}

	log.Offence.Debug().
		Str("offence_type", offenceType.String()).
		Int("offenders", len(offenders)).
		Uint32("session", sessionIndex).
		Msg("offence reported")

	return true
}
