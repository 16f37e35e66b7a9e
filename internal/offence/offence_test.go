package offence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/bramble/internal/committee"
)

type recordingReporter struct {
	records   []Record
	reportErr error
}

func (r *recordingReporter) ReportOffence(_ []committee.AccountID, record Record) error {
	if r.reportErr != nil {
		return r.reportErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *recordingReporter) IsKnownOffence(offenders []committee.AccountID, sessionIndex uint32) bool {
	for _, rec := range r.records {
		if rec.SessionIndex != sessionIndex || len(rec.Offenders) != len(offenders) {
			continue
		}
		same := true
		for i := range offenders {
			if rec.Offenders[i] != offenders[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func accountID(b byte) committee.AccountID {
	var id committee.AccountID
	id[0] = b
	return id
}

func TestSlashFraction(t *testing.T) {
	tests := []struct {
		offenders  uint32
		validators uint32
		expected   float64
	}{
		{2, 10, 0.36},  // (3*2/10)^2
		{1, 10, 0.09},  // (3/10)^2
		{3, 10, 0.81},  // (9/10)^2
		{4, 10, 1.0},   // (12/10)^2 capped
		{10, 10, 1.0},  // capped
		{1, 100, 0.0009},
		{0, 10, 0.0},
	}

	for _, tc := range tests {
		got := SlashFraction(tc.offenders, tc.validators)
		assert.InDelta(t, tc.expected, got.Float64(), 1e-9, "k=%d v=%d", tc.offenders, tc.validators)
	}
}

func TestSlashFractionEmptySet(t *testing.T) {
	assert.Equal(t, Perbill(0), SlashFraction(3, 0))
}

func TestCreateAndReport(t *testing.T) {
	reporter := &recordingReporter{}
	sender := accountID(1)
	offenders := []committee.AccountID{accountID(2), accountID(3)}

	reported := CreateAndReport(reporter, sender, offenders, 7, 10, ChallengeAttemptedOnSuccessfulTransaction)
	require.True(t, reported)
	require.Len(t, reporter.records, 1)

	record := reporter.records[0]
	assert.Equal(t, uint32(7), record.SessionIndex)
	assert.Equal(t, uint32(10), record.ValidatorSetCount)
	assert.Equal(t, offenders, record.Offenders)
	assert.Equal(t, ChallengeAttemptedOnSuccessfulTransaction, record.Type)
}

func TestCreateAndReportIdempotent(t *testing.T) {
	reporter := &recordingReporter{}
	sender := accountID(1)
	offenders := []committee.AccountID{accountID(2)}

	require.True(t, CreateAndReport(reporter, sender, offenders, 7, 10, ChallengeAttemptedOnUnsuccessfulTransaction))

	// Same offenders and session: report suppressed
	assert.False(t, CreateAndReport(reporter, sender, offenders, 7, 10, ChallengeAttemptedOnUnsuccessfulTransaction))
	assert.Len(t, reporter.records, 1)

	// A new session is reportable again
	assert.True(t, CreateAndReport(reporter, sender, offenders, 8, 10, ChallengeAttemptedOnUnsuccessfulTransaction))
}

func TestCreateAndReportNoOffenders(t *testing.T) {
	reporter := &recordingReporter{}
	assert.False(t, CreateAndReport(reporter, accountID(1), nil, 7, 10, InvalidEthereumRangeData))
	assert.Empty(t, reporter.records)
}

func TestCreateAndReportDeliveryFailure(t *testing.T) {
	reporter := &recordingReporter{reportErr: errors.New("handler down")}

	// Best effort: a failed delivery still counts as a report attempt
	reported := CreateAndReport(reporter, accountID(1), []committee.AccountID{accountID(2)}, 7, 10, InvalidEthereumRangeData)
	assert.True(t, reported)
}
