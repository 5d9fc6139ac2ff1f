package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

func strPtr(s string) *string { return &s }

func attendanceRow(day int, status models.AttendanceStatus, start, end string) models.AttendanceRecord {
	rec := models.AttendanceRecord{
		CastID: "cast-1",
		Date:   time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		Status: status,
	}
	if start != "" {
		rec.StartTime = strPtr(start)
		rec.EndTime = strPtr(end)
	}
	return rec
}

func serviceTx(day int, customerID string, price float64, opts ...func(*models.TransactionRecord)) models.TransactionRecord {
	tx := models.TransactionRecord{
		CastID:      "cast-1",
		Timestamp:   time.Date(2025, 6, day, 14, 0, 0, 0, time.UTC),
		Price:       price,
		CastPayout:  price * 0.6,
		Disposition: models.DispositionConfirmed,
	}
	if customerID != "" {
		tx.CustomerID = &customerID
	}
	for _, opt := range opts {
		opt(&tx)
	}
	return tx
}

func testWindow(t *testing.T, label string) MonthlyWindow {
	t.Helper()
	windows, err := ResolveWindows(label)
	require.NoError(t, err)
	return windows.Current
}

func TestAggregateAttendance(t *testing.T) {
	window := testWindow(t, "2025-06")

	snap := Aggregate(AggregateInput{
		Window: window,
		Attendance: []models.AttendanceRecord{
			attendanceRow(2, models.AttendanceStatusWorked, "10:00", "18:00"),
			attendanceRow(2, models.AttendanceStatusWorked, "", ""), // duplicate date
			attendanceRow(3, models.AttendanceStatusLate, "12:00", "18:00"),
			attendanceRow(4, models.AttendanceStatusAbsent, "10:00", "18:00"),
			attendanceRow(5, models.AttendanceStatusAbsent, "10:00", "18:00"),
			attendanceRow(6, models.AttendanceStatusAbsent, "10:00", "18:00"),
			attendanceRow(7, models.AttendanceStatusEarlyLeave, "10:00", "15:00"),
			attendanceRow(8, models.AttendanceStatusUnset, "", ""),
		},
	})

	assert.Equal(t, 3, snap.WorkedDays, "duplicate rows and unset rows do not count")
	assert.Equal(t, 3, snap.AbsentDays)
	assert.Equal(t, 7, snap.ScheduledDays)
	assert.Equal(t, 3, snap.LongestAbsenceRun)
	assert.Equal(t, "2025-06-07", snap.LastWorkedDate)
	assert.Equal(t, []string{"2025-06-02", "2025-06-03", "2025-06-07"}, snap.WorkedDates)
	// 480 + 360 + 3*480 + 300 scheduled minutes
	assert.Equal(t, 2580, snap.MinutesScheduled)
}

func TestAggregateWorkingRateCrossesMidnight(t *testing.T) {
	window := testWindow(t, "2025-06")

	snap := Aggregate(AggregateInput{
		Window: window,
		Attendance: []models.AttendanceRecord{
			attendanceRow(10, models.AttendanceStatusWorked, "18:00", "00:00"), // 360 scheduled
		},
		Transactions: []models.TransactionRecord{
			serviceTx(10, "c1", 20000, func(tx *models.TransactionRecord) {
				tx.StartTime = strPtr("23:00")
				tx.EndTime = strPtr("01:00") // 120 worked past midnight
			}),
			serviceTx(10, "c2", 15000, func(tx *models.TransactionRecord) {
				tx.StartTime = strPtr("19:00")
				tx.EndTime = strPtr("20:00") // 60 worked
			}),
		},
	})

	assert.Equal(t, 180, snap.MinutesWorked)
	assert.Equal(t, 360, snap.MinutesScheduled)
	assert.Equal(t, 50.0, snap.WorkingRate)
	assert.Equal(t, 17500.0, snap.AverageTicket)
}

func TestAggregateAddOnsAndDiscounts(t *testing.T) {
	window := testWindow(t, "2025-06")

	snap := Aggregate(AggregateInput{
		Window: window,
		Transactions: []models.TransactionRecord{
			serviceTx(1, "c1", 18000, func(tx *models.TransactionRecord) {
				tx.Package = "90min"
				tx.AddOns = models.LabelList{"アロマ", "延長"}
				tx.AddOnPrice = 3000
			}),
			serviceTx(2, "c2", 12000, func(tx *models.TransactionRecord) {
				tx.DiscountAmount = 1000 // discount with no code
			}),
			serviceTx(3, "c3", 15000, func(tx *models.TransactionRecord) {
				tx.Package = "90min"
				tx.Discounts = models.LabelList{"WEB", "LINE"}
				tx.DiscountAmount = 2000
			}),
		},
	})

	// Add-on price splits evenly across the transaction's labels.
	assert.Equal(t, 1, snap.AddOnCounts["アロマ"])
	assert.Equal(t, 1500.0, snap.AddOnRevenue["アロマ"])
	assert.Equal(t, 1500.0, snap.AddOnRevenue["延長"])
	assert.Equal(t, 2, snap.AddOnNoneCount)
	assert.InDelta(t, 33.3, snap.AddOnUsageRate, 0.1)

	assert.Equal(t, 2, snap.PackageCounts["90min"])
	assert.Equal(t, 1, snap.PackageCounts["(none)"])

	assert.Equal(t, 1000.0, snap.DiscountAmounts["(none)"])
	assert.Equal(t, 1000.0, snap.DiscountAmounts["WEB"])
	assert.Equal(t, 1000.0, snap.DiscountAmounts["LINE"])
}

func TestAggregateNewAndRepeatCustomers(t *testing.T) {
	window := testWindow(t, "2025-06")

	firstVisits := map[string]time.Time{
		"regular": time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC),
		"fresh":   time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC),
	}

	snap := Aggregate(AggregateInput{
		Window: window,
		Transactions: []models.TransactionRecord{
			serviceTx(3, "fresh", 15000),
			serviceTx(20, "fresh", 15000),
			serviceTx(25, "fresh", 15000),
			serviceTx(5, "regular", 15000), // first-ever visit predates the window
			serviceTx(8, "once", 12000),    // unknown history, first seen this window
			serviceTx(9, "", 10000),        // walk-in with no customer record
		},
		FirstVisits: firstVisits,
	})

	assert.Equal(t, []string{"fresh", "once"}, snap.NewCustomerIDs)
	assert.Equal(t, 2, snap.NewCustomerCount)
	assert.Equal(t, 1, snap.RepeatCustomerCount)
	assert.Equal(t, 2, snap.RepeatVisits)
	assert.Equal(t, 50.0, snap.RepeatRate)

	withHistory := Aggregate(AggregateInput{
		Window:       window,
		Transactions: []models.TransactionRecord{serviceTx(5, "regular", 15000)},
		FirstVisits:  firstVisits,
	})
	assert.Equal(t, 0, withHistory.NewCustomerCount)
}

func TestAggregateCancellations(t *testing.T) {
	window := testWindow(t, "2025-06")

	snap := Aggregate(AggregateInput{
		Window: window,
		Transactions: []models.TransactionRecord{
			serviceTx(1, "c1", 15000),
			serviceTx(2, "c2", 15000),
			serviceTx(3, "c3", 15000, func(tx *models.TransactionRecord) {
				tx.Disposition = models.DispositionCancelled
			}),
			serviceTx(4, "c4", 20000, func(tx *models.TransactionRecord) {
				tx.Disposition = models.DispositionNoShow
			}),
		},
	})

	assert.Equal(t, 2, snap.ServiceCount)
	assert.Equal(t, 2, snap.CancelCount)
	assert.Equal(t, 35000.0, snap.CancelLostRevenue)
	assert.Equal(t, 50.0, snap.CancellationRate)
	assert.Equal(t, 30000.0, snap.TotalSales, "lost transactions never reach the sales total")
}

func TestAggregateEmptyWindow(t *testing.T) {
	snap := Aggregate(AggregateInput{Window: testWindow(t, "2025-06")})

	assert.Zero(t, snap.WorkedDays)
	assert.Zero(t, snap.WorkingRate)
	assert.Zero(t, snap.AverageTicket)
	assert.Zero(t, snap.CancellationRate)
	assert.Empty(t, snap.LastWorkedDate)
	assert.NotNil(t, snap.PackageCounts)
}
