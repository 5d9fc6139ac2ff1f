package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// RiskLevel is the three-tier retention-risk classification.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Predicate keys, one per retention-risk signal.
const (
	PredicateAttendanceDecline = "attendance_decline"
	PredicateLowWorkingRate    = "low_working_rate"
	PredicateLowEarnings       = "low_earnings"
	PredicateEarningsDrop      = "earnings_drop"
	PredicateLowDailyAverage   = "low_daily_average"
	PredicateAbsenceRate       = "absence_rate"
	PredicateStaleAttendance   = "stale_attendance"
	PredicateBookingDrought    = "booking_drought"
	PredicateHighCancellation  = "high_cancellation"
	PredicateUnderPosting      = "under_posting"
	PredicateConcernNote       = "concern_note"
	PredicateNoCheckIn         = "no_check_in"
)

// Thresholds makes every risk cutoff configurable. The defaults reproduce the
// legacy console's literals; stores are expected to tune them.
type Thresholds struct {
	WorkingRateFloor float64
	EarningsFloor    float64
	EarningsDrop     float64
	AbsenceRateFloor float64
	AbsenceRunDays   int
	CancelRateFloor  float64
	StaleDays        int
	LowBookingPerDay int
	LowBookingRun    int
	DiaryMultiplier  int
	ConcernKeywords  []string
}

// DefaultThresholds returns the legacy cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WorkingRateFloor: 30,
		EarningsFloor:    0.5,
		EarningsDrop:     -0.4,
		AbsenceRateFloor: 0.3,
		AbsenceRunDays:   3,
		CancelRateFloor:  0.3,
		StaleDays:        14,
		LowBookingPerDay: 2,
		LowBookingRun:    3,
		DiaryMultiplier:  2,
		ConcernKeywords: []string{
			"やめたい", "やる気", "退店", "続けられない", "疲れた", "辞め", "やめよう", "退店検討",
		},
	}
}

// Evidence is the full input set for the risk classifier: the three monthly
// snapshots plus the care data gathered alongside them. Now is injected so a
// run is a pure function of its arguments.
type Evidence struct {
	Current  MetricsSnapshot
	Previous MetricsSnapshot
	TwoBack  MetricsSnapshot

	TargetEarnings     float64
	DiaryPostCount     int
	LatestNoteText     string
	HasMeetingInWindow bool
	Now                time.Time
}

// Predicate is one evaluated risk signal with the numeric evidence behind it,
// retained for display and audit.
type Predicate struct {
	Key       string  `json:"key"`
	Triggered bool    `json:"triggered"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Detail    string  `json:"detail,omitempty"`
}

// RiskAssessment is the classifier output: all twelve predicates, the count of
// those that hold, and the derived tier.
type RiskAssessment struct {
	Predicates []Predicate `json:"predicates"`
	TrueCount  int         `json:"true_count"`
	Level      RiskLevel   `json:"level"`
}

// Classify evaluates the twelve retention-risk predicates independently (no
// short-circuiting) and maps the count of true signals to a tier: six or more
// is high, four or more is medium, anything less is low.
func Classify(ev Evidence, th Thresholds) RiskAssessment {
	predicates := []Predicate{
		attendanceDecline(ev),
		lowWorkingRate(ev, th),
		lowEarnings(ev, th),
		earningsDrop(ev, th),
		lowDailyAverage(ev, th),
		absenceRate(ev, th),
		staleAttendance(ev, th),
		bookingDrought(ev, th),
		highCancellation(ev, th),
		underPosting(ev, th),
		concernNote(ev, th),
		noCheckIn(ev),
	}

	trueCount := 0
	for _, p := range predicates {
		if p.Triggered {
			trueCount++
		}
	}

	level := RiskLevelLow
	switch {
	case trueCount >= 6:
		level = RiskLevelHigh
	case trueCount >= 4:
		level = RiskLevelMedium
	}

	return RiskAssessment{Predicates: predicates, TrueCount: trueCount, Level: level}
}

// declined is true only when the prior month had activity to decline from.
func declined(current, prior int) bool {
	return prior > 0 && current < prior
}

func attendanceDecline(ev Evidence) Predicate {
	run := LongestRun([]bool{
		declined(ev.Previous.WorkedDays, ev.TwoBack.WorkedDays),
		declined(ev.Current.WorkedDays, ev.Previous.WorkedDays),
	})
	return Predicate{
		Key:       PredicateAttendanceDecline,
		Triggered: run >= 2,
		Value:     float64(run),
		Threshold: 2,
	}
}

func lowWorkingRate(ev Evidence, th Thresholds) Predicate {
	return Predicate{
		Key:       PredicateLowWorkingRate,
		Triggered: ev.Current.WorkingRate <= th.WorkingRateFloor,
		Value:     ev.Current.WorkingRate,
		Threshold: th.WorkingRateFloor,
	}
}

func lowEarnings(ev Evidence, th Thresholds) Predicate {
	floor := ev.TargetEarnings * th.EarningsFloor
	return Predicate{
		Key:       PredicateLowEarnings,
		Triggered: ev.Current.TotalPayout <= floor,
		Value:     ev.Current.TotalPayout,
		Threshold: floor,
	}
}

func earningsDrop(ev Evidence, th Thresholds) Predicate {
	p := Predicate{Key: PredicateEarningsDrop, Threshold: th.EarningsDrop * 100}
	// Only meaningful when the prior month actually paid out.
	if ev.Previous.TotalPayout > 0 {
		change := (ev.Current.TotalPayout - ev.Previous.TotalPayout) / ev.Previous.TotalPayout
		p.Value = round1(change * 100)
		p.Triggered = change <= th.EarningsDrop
	}
	return p
}

func lowDailyAverage(ev Evidence, th Thresholds) Predicate {
	var perDay, targetPerDay float64
	if ev.Current.WorkedDays > 0 {
		perDay = ev.Current.TotalPayout / float64(ev.Current.WorkedDays)
		targetPerDay = ev.TargetEarnings / float64(ev.Current.WorkedDays)
	}
	// An empty month degrades both sides to zero and the predicate fires:
	// no earnings at all is a retention signal, not a neutral state.
	return Predicate{
		Key:       PredicateLowDailyAverage,
		Triggered: perDay <= targetPerDay*th.EarningsFloor,
		Value:     perDay,
		Threshold: targetPerDay * th.EarningsFloor,
	}
}

func absenceRate(ev Evidence, th Thresholds) Predicate {
	countFloor := math.Ceil(th.AbsenceRateFloor * float64(ev.Current.WorkedDays))
	byCount := ev.Current.WorkedDays > 0 && float64(ev.Current.AbsentDays) >= countFloor
	byRun := ev.Current.LongestAbsenceRun >= th.AbsenceRunDays
	return Predicate{
		Key:       PredicateAbsenceRate,
		Triggered: byCount || byRun,
		Value:     float64(ev.Current.AbsentDays),
		Threshold: countFloor,
		Detail:    "longest_absence_run=" + strconv.Itoa(ev.Current.LongestAbsenceRun),
	}
}

func staleAttendance(ev Evidence, th Thresholds) Predicate {
	p := Predicate{Key: PredicateStaleAttendance, Threshold: float64(th.StaleDays), Value: -1}
	if ev.Current.LastWorkedDate == "" {
		// Never worked: no staleness signal, absence predicates cover it.
		return p
	}
	last, err := time.Parse("2006-01-02", ev.Current.LastWorkedDate)
	if err != nil {
		return p
	}
	days := int(ev.Now.Sub(last).Hours() / 24)
	p.Value = float64(days)
	p.Triggered = days >= th.StaleDays
	return p
}

func bookingDrought(ev Evidence, th Thresholds) Predicate {
	// Absent days never appear in WorkedDates, so they are skipped rather
	// than breaking or extending the run.
	flags := make([]bool, 0, len(ev.Current.WorkedDates))
	for _, day := range ev.Current.WorkedDates {
		flags = append(flags, ev.Current.ConfirmedByDay[day] <= th.LowBookingPerDay)
	}
	run := LongestRun(flags)
	return Predicate{
		Key:       PredicateBookingDrought,
		Triggered: run >= th.LowBookingRun,
		Value:     float64(run),
		Threshold: float64(th.LowBookingRun),
	}
}

func highCancellation(ev Evidence, th Thresholds) Predicate {
	floor := th.CancelRateFloor * 100
	return Predicate{
		Key:       PredicateHighCancellation,
		Triggered: ev.Current.CancellationRate >= floor && ev.Current.CancelCount > 0,
		Value:     ev.Current.CancellationRate,
		Threshold: floor,
	}
}

func underPosting(ev Evidence, th Thresholds) Predicate {
	expected := ev.Current.WorkedDays * th.DiaryMultiplier
	return Predicate{
		Key:       PredicateUnderPosting,
		Triggered: UnderPosting(ev.DiaryPostCount, ev.Current.WorkedDays, th.DiaryMultiplier),
		Value:     float64(ev.DiaryPostCount),
		Threshold: float64(expected),
	}
}

func concernNote(ev Evidence, th Thresholds) Predicate {
	p := Predicate{Key: PredicateConcernNote}
	for _, keyword := range th.ConcernKeywords {
		if keyword != "" && strings.Contains(ev.LatestNoteText, keyword) {
			p.Triggered = true
			p.Value = 1
			p.Detail = "keyword=" + keyword
			break
		}
	}
	return p
}

func noCheckIn(ev Evidence) Predicate {
	p := Predicate{Key: PredicateNoCheckIn, Triggered: !ev.HasMeetingInWindow}
	if ev.HasMeetingInWindow {
		p.Value = 1
	}
	return p
}
