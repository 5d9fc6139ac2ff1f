package analytics

import (
	"time"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// WindowRecords is one window's raw input rows.
type WindowRecords struct {
	Attendance   []models.AttendanceRecord
	Transactions []models.TransactionRecord
}

// ReportInputs carries everything BuildReport needs, already fetched. The
// engine never touches storage or the wall clock itself.
type ReportInputs struct {
	CastID   string
	CastName string
	Month    string
	Windows  Windows

	Current  WindowRecords
	Previous WindowRecords
	TwoBack  WindowRecords

	FirstVisits map[string]time.Time
	DiaryPosts  []models.DiaryPost

	// CaseNotes must be ordered newest first.
	CaseNotes []models.CaseNote
	Meetings  []models.Meeting

	TargetEarnings float64
	Thresholds     Thresholds
	Now            time.Time
}

// SnapshotSet groups the three monthly snapshots the report compares.
type SnapshotSet struct {
	Current  MetricsSnapshot `json:"current"`
	Previous MetricsSnapshot `json:"previous"`
	TwoBack  MetricsSnapshot `json:"two_back"`
}

// Trends holds month-over-month comparisons keyed by metric name.
type Trends struct {
	VsPrevious map[string]Trend `json:"vs_previous"`
	VsTwoBack  map[string]Trend `json:"vs_two_back"`
}

// AnalysisReport is the complete per-cast monthly analysis: three snapshots,
// the trend comparisons between them, and the retention-risk assessment.
type AnalysisReport struct {
	CastID          string         `json:"cast_id"`
	CastName        string         `json:"cast_name"`
	Month           string         `json:"month"`
	Snapshots       SnapshotSet    `json:"snapshots"`
	Trends          Trends         `json:"trends"`
	Risk            RiskAssessment `json:"risk"`
	DiaryPostCount  int            `json:"diary_post_count"`
	DiaryDailyPosts map[string]int `json:"diary_daily_posts,omitempty"`
	TargetEarnings  float64        `json:"target_earnings"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// BuildReport aggregates each window, compares the results, and classifies
// retention risk. It is deterministic for a given input set.
func BuildReport(in ReportInputs) AnalysisReport {
	current := Aggregate(AggregateInput{
		Window:       in.Windows.Current,
		Attendance:   in.Current.Attendance,
		Transactions: in.Current.Transactions,
		FirstVisits:  in.FirstVisits,
	})
	previous := Aggregate(AggregateInput{
		Window:       in.Windows.Previous,
		Attendance:   in.Previous.Attendance,
		Transactions: in.Previous.Transactions,
		FirstVisits:  in.FirstVisits,
	})
	twoBack := Aggregate(AggregateInput{
		Window:       in.Windows.TwoBack,
		Attendance:   in.TwoBack.Attendance,
		Transactions: in.TwoBack.Transactions,
		FirstVisits:  in.FirstVisits,
	})

	diaryCount := CountPosts(in.DiaryPosts, in.CastName, in.Windows.Current)

	ev := Evidence{
		Current:            current,
		Previous:           previous,
		TwoBack:            twoBack,
		TargetEarnings:     in.TargetEarnings,
		DiaryPostCount:     diaryCount,
		HasMeetingInWindow: hasMeeting(in.Meetings, in.Windows.Current),
		Now:                in.Now,
	}
	if len(in.CaseNotes) > 0 {
		ev.LatestNoteText = in.CaseNotes[0].Text
	}

	return AnalysisReport{
		CastID:   in.CastID,
		CastName: in.CastName,
		Month:    in.Month,
		Snapshots: SnapshotSet{
			Current:  current,
			Previous: previous,
			TwoBack:  twoBack,
		},
		Trends: Trends{
			VsPrevious: compareSnapshots(current, previous),
			VsTwoBack:  compareSnapshots(current, twoBack),
		},
		Risk:            Classify(ev, in.Thresholds),
		DiaryPostCount:  diaryCount,
		DiaryDailyPosts: PostsPerDay(in.DiaryPosts, in.CastName, in.Windows.Current),
		TargetEarnings:  in.TargetEarnings,
		GeneratedAt:     in.Now,
	}
}

func hasMeeting(meetings []models.Meeting, window MonthlyWindow) bool {
	for _, m := range meetings {
		if window.Contains(m.Date) {
			return true
		}
	}
	return false
}

// compareSnapshots builds the trend map one metric at a time. Package and
// add-on counts get per-bucket keys so a bucket absent from either month is
// still compared against zero.
func compareSnapshots(current, prior MetricsSnapshot) map[string]Trend {
	trends := map[string]Trend{
		"worked_days":       Compare(float64(current.WorkedDays), float64(prior.WorkedDays)),
		"minutes_worked":    Compare(float64(current.MinutesWorked), float64(prior.MinutesWorked)),
		"working_rate":      Compare(current.WorkingRate, prior.WorkingRate),
		"service_count":     Compare(float64(current.ServiceCount), float64(prior.ServiceCount)),
		"total_sales":       Compare(current.TotalSales, prior.TotalSales),
		"total_payout":      Compare(current.TotalPayout, prior.TotalPayout),
		"average_ticket":    Compare(current.AverageTicket, prior.AverageTicket),
		"new_customers":     Compare(float64(current.NewCustomerCount), float64(prior.NewCustomerCount)),
		"repeat_rate":       Compare(current.RepeatRate, prior.RepeatRate),
		"cancellation_rate": Compare(current.CancellationRate, prior.CancellationRate),
		"add_on_usage_rate": Compare(current.AddOnUsageRate, prior.AddOnUsageRate),
	}
	for key := range bucketKeys(current.PackageCounts, prior.PackageCounts) {
		trends["package:"+key] = Compare(float64(current.PackageCounts[key]), float64(prior.PackageCounts[key]))
	}
	for key := range bucketKeys(current.AddOnCounts, prior.AddOnCounts) {
		trends["add_on:"+key] = Compare(float64(current.AddOnCounts[key]), float64(prior.AddOnCounts[key]))
	}
	return trends
}

func bucketKeys(a, b map[string]int) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}
