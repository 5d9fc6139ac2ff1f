package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// healthyEvidence is a cast with no retention signals at all: steady
// attendance, earnings above target, an active diary, and a recent meeting.
func healthyEvidence() Evidence {
	return Evidence{
		Current: MetricsSnapshot{
			WorkedDays:        20,
			AbsentDays:        1,
			WorkingRate:       85,
			TotalPayout:       400000,
			LongestAbsenceRun: 1,
			LastWorkedDate:    "2025-06-28",
			WorkedDates:       []string{"2025-06-02", "2025-06-03", "2025-06-04"},
			ConfirmedByDay:    map[string]int{"2025-06-02": 4, "2025-06-03": 3, "2025-06-04": 5},
			CancellationRate:  5,
			CancelCount:       1,
		},
		Previous:           MetricsSnapshot{WorkedDays: 18, TotalPayout: 380000},
		TwoBack:            MetricsSnapshot{WorkedDays: 19, TotalPayout: 390000},
		TargetEarnings:     300000,
		DiaryPostCount:     45,
		LatestNoteText:     "来月のシフト希望を確認した。",
		HasMeetingInWindow: true,
		Now:                time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestClassifyHealthyCastIsLow(t *testing.T) {
	result := Classify(healthyEvidence(), DefaultThresholds())

	assert.Equal(t, RiskLevelLow, result.Level)
	assert.Equal(t, 0, result.TrueCount)
	require.Len(t, result.Predicates, 12)
	for _, p := range result.Predicates {
		assert.False(t, p.Triggered, p.Key)
	}
}

func TestClassifyFourSignalsIsMedium(t *testing.T) {
	ev := healthyEvidence()
	ev.HasMeetingInWindow = false
	ev.DiaryPostCount = 40 // exactly at the expected volume
	ev.Current.WorkingRate = 30
	ev.Current.LastWorkedDate = "2025-06-01" // 30 days before Now

	result := Classify(ev, DefaultThresholds())

	assert.Equal(t, 4, result.TrueCount)
	assert.Equal(t, RiskLevelMedium, result.Level)
}

func TestClassifySixSignalsIsHigh(t *testing.T) {
	ev := healthyEvidence()
	ev.HasMeetingInWindow = false
	ev.DiaryPostCount = 0
	ev.Current.WorkingRate = 12
	ev.Current.LastWorkedDate = "2025-06-01"
	ev.Current.LongestAbsenceRun = 3
	ev.Current.CancellationRate = 50
	ev.Current.CancelCount = 4

	result := Classify(ev, DefaultThresholds())

	assert.Equal(t, 6, result.TrueCount)
	assert.Equal(t, RiskLevelHigh, result.Level)
}

func TestClassifyEmptyMonthSignals(t *testing.T) {
	ev := Evidence{
		TargetEarnings: 300000,
		Now:            time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	result := Classify(ev, DefaultThresholds())
	byKey := make(map[string]Predicate, len(result.Predicates))
	for _, p := range result.Predicates {
		byKey[p.Key] = p
	}

	// A month with no records at all still reads as risky, not neutral.
	assert.True(t, byKey[PredicateLowWorkingRate].Triggered)
	assert.True(t, byKey[PredicateLowEarnings].Triggered)
	assert.True(t, byKey[PredicateLowDailyAverage].Triggered)
	assert.True(t, byKey[PredicateUnderPosting].Triggered)
	assert.True(t, byKey[PredicateNoCheckIn].Triggered)

	// But signals that compare against history stay quiet without any.
	assert.False(t, byKey[PredicateAttendanceDecline].Triggered)
	assert.False(t, byKey[PredicateEarningsDrop].Triggered)
	assert.False(t, byKey[PredicateAbsenceRate].Triggered)

	// Never worked means staleness cannot be measured.
	assert.False(t, byKey[PredicateStaleAttendance].Triggered)
	assert.Equal(t, -1.0, byKey[PredicateStaleAttendance].Value)
}

func TestAttendanceDeclineNeedsTwoConsecutiveDrops(t *testing.T) {
	ev := healthyEvidence()
	ev.TwoBack.WorkedDays = 20
	ev.Previous.WorkedDays = 15
	ev.Current.WorkedDays = 10

	result := Classify(ev, DefaultThresholds())
	byKey := predicateByKey(result)
	assert.True(t, byKey[PredicateAttendanceDecline].Triggered)

	// A single drop after a flat month is not a decline trend.
	ev.TwoBack.WorkedDays = 15
	result = Classify(ev, DefaultThresholds())
	assert.False(t, predicateByKey(result)[PredicateAttendanceDecline].Triggered)

	// Growth from zero is not a decline either.
	ev.TwoBack.WorkedDays = 0
	ev.Previous.WorkedDays = 0
	result = Classify(ev, DefaultThresholds())
	assert.False(t, predicateByKey(result)[PredicateAttendanceDecline].Triggered)
}

func TestEarningsDropPredicate(t *testing.T) {
	ev := healthyEvidence()
	ev.Previous.TotalPayout = 500000
	ev.Current.TotalPayout = 290000 // -42%

	byKey := predicateByKey(Classify(ev, DefaultThresholds()))
	p := byKey[PredicateEarningsDrop]
	assert.True(t, p.Triggered)
	assert.Equal(t, -42.0, p.Value)
}

func TestBookingDroughtRunOverWorkedDates(t *testing.T) {
	ev := healthyEvidence()
	ev.Current.WorkedDates = []string{
		"2025-06-02", "2025-06-03", "2025-06-05", "2025-06-06", "2025-06-09",
	}
	ev.Current.ConfirmedByDay = map[string]int{
		"2025-06-02": 4,
		"2025-06-03": 2,
		"2025-06-05": 1,
		"2025-06-06": 0,
		"2025-06-09": 3,
	}

	p := predicateByKey(Classify(ev, DefaultThresholds()))[PredicateBookingDrought]
	assert.True(t, p.Triggered, "three consecutive worked days at two or fewer bookings")
	assert.Equal(t, 3.0, p.Value)
}

func TestConcernNoteMatchesKeyword(t *testing.T) {
	ev := healthyEvidence()
	ev.LatestNoteText = "本人からそろそろ退店したいと相談があった"

	p := predicateByKey(Classify(ev, DefaultThresholds()))[PredicateConcernNote]
	assert.True(t, p.Triggered)
	assert.Equal(t, "keyword=退店", p.Detail)
}

func predicateByKey(result RiskAssessment) map[string]Predicate {
	byKey := make(map[string]Predicate, len(result.Predicates))
	for _, p := range result.Predicates {
		byKey[p.Key] = p
	}
	return byKey
}
