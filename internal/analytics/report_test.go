package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

func TestBuildReport(t *testing.T) {
	windows, err := ResolveWindows("2025-06")
	require.NoError(t, err)

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	memo := "面談済み"

	report := BuildReport(ReportInputs{
		CastID:   "cast-1",
		CastName: "みゆ",
		Month:    "2025-06",
		Windows:  windows,
		Current: WindowRecords{
			Attendance: []models.AttendanceRecord{
				attendanceRow(2, models.AttendanceStatusWorked, "10:00", "18:00"),
				attendanceRow(3, models.AttendanceStatusWorked, "10:00", "18:00"),
			},
			Transactions: []models.TransactionRecord{
				serviceTx(2, "c1", 20000, func(tx *models.TransactionRecord) {
					tx.StartTime = strPtr("14:00")
					tx.EndTime = strPtr("16:00")
				}),
			},
		},
		Previous: WindowRecords{
			Transactions: []models.TransactionRecord{
				func() models.TransactionRecord {
					tx := serviceTx(10, "c1", 10000)
					tx.Timestamp = time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)
					return tx
				}(),
			},
		},
		DiaryPosts: []models.DiaryPost{
			diaryPost("みゆ", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)),
		},
		CaseNotes: []models.CaseNote{
			{Text: "最近疲れたと漏らしている", CreatedAt: now},
			{Text: "問題なし", CreatedAt: now.AddDate(0, 0, -10)},
		},
		Meetings: []models.Meeting{
			{CastID: "cast-1", Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), Memo: &memo},
		},
		TargetEarnings: 300000,
		Thresholds:     DefaultThresholds(),
		Now:            now,
	})

	assert.Equal(t, "cast-1", report.CastID)
	assert.Equal(t, "2025-06", report.Month)
	assert.Equal(t, now, report.GeneratedAt)

	assert.Equal(t, 2, report.Snapshots.Current.WorkedDays)
	assert.Equal(t, 20000.0, report.Snapshots.Current.TotalSales)
	assert.Equal(t, 10000.0, report.Snapshots.Previous.TotalSales)
	assert.Zero(t, report.Snapshots.TwoBack.ServiceCount)

	// Sales doubled month over month.
	sales := report.Trends.VsPrevious["total_sales"]
	require.NotNil(t, sales.Percent)
	assert.Equal(t, 100.0, *sales.Percent)

	// No two-back activity at all, so growth from zero reads as infinite.
	assert.True(t, report.Trends.VsTwoBack["total_sales"].Infinite)

	assert.Equal(t, 1, report.DiaryPostCount)
	assert.Equal(t, map[string]int{"2025-06-02": 1}, report.DiaryDailyPosts)

	// The newest case note carries a concern keyword and the meeting this
	// month suppresses the check-in signal.
	byKey := predicateByKey(report.Risk)
	assert.True(t, byKey[PredicateConcernNote].Triggered)
	assert.False(t, byKey[PredicateNoCheckIn].Triggered)

	// Per-bucket package trends compare against zero for buckets absent from
	// the prior month.
	pkg, ok := report.Trends.VsPrevious["package:(none)"]
	require.True(t, ok)
	assert.Equal(t, 0.0, pkg.Delta)
}
