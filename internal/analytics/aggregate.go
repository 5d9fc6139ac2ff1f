package analytics

import (
	"sort"
	"time"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// AggregateInput is one window's worth of already-fetched records. FirstVisits
// maps customer IDs to the timestamp of their first-ever transaction with this
// cast, across all history; it is what distinguishes a genuinely new customer
// from one whose first visit merely falls earliest inside the window.
type AggregateInput struct {
	Window       MonthlyWindow
	Attendance   []models.AttendanceRecord
	Transactions []models.TransactionRecord
	FirstVisits  map[string]time.Time
}

// MetricsSnapshot is the aggregate output for one cast and one window. It is
// immutable once produced and recomputed wholesale on any input change.
type MetricsSnapshot struct {
	Window MonthlyWindow `json:"window"`

	WorkedDays       int     `json:"worked_days"`
	AbsentDays       int     `json:"absent_days"`
	ScheduledDays    int     `json:"scheduled_days"`
	MinutesWorked    int     `json:"minutes_worked"`
	MinutesScheduled int     `json:"minutes_scheduled"`
	WorkingRate      float64 `json:"working_rate"`

	ServiceCount  int     `json:"service_count"`
	TotalSales    float64 `json:"total_sales"`
	TotalPayout   float64 `json:"total_payout"`
	AverageTicket float64 `json:"average_ticket"`

	PackageCounts   map[string]int     `json:"package_counts"`
	PackageRevenue  map[string]float64 `json:"package_revenue"`
	PriorityCounts  map[string]int     `json:"priority_counts"`
	AddOnCounts     map[string]int     `json:"add_on_counts"`
	AddOnRevenue    map[string]float64 `json:"add_on_revenue"`
	AddOnNoneCount  int                `json:"add_on_none_count"`
	AddOnUsageRate  float64            `json:"add_on_usage_rate"`
	DiscountCounts  map[string]int     `json:"discount_counts"`
	DiscountAmounts map[string]float64 `json:"discount_amounts"`

	NewCustomerIDs      []string `json:"new_customer_ids"`
	NewCustomerCount    int      `json:"new_customer_count"`
	RepeatCustomerCount int      `json:"repeat_customer_count"`
	RepeatVisits        int      `json:"repeat_visits"`
	RepeatRate          float64  `json:"repeat_rate"`

	CancelCount       int     `json:"cancel_count"`
	CancelLostRevenue float64 `json:"cancel_lost_revenue"`
	CancellationRate  float64 `json:"cancellation_rate"`

	WorkedDates       []string       `json:"worked_dates"`
	ConfirmedByDay    map[string]int `json:"confirmed_by_day"`
	LongestAbsenceRun int            `json:"longest_absence_run"`
	LastWorkedDate    string         `json:"last_worked_date,omitempty"`
}

// Aggregate folds one window's attendance and transaction records into a flat
// metrics snapshot. Cancelled and no-show transactions are excluded from all
// service aggregates and retained only for the cancellation metrics. All
// ratios degrade to 0 on empty denominators; an empty window is not an error.
func Aggregate(in AggregateInput) MetricsSnapshot {
	snap := MetricsSnapshot{
		Window:          in.Window,
		PackageCounts:   make(map[string]int),
		PackageRevenue:  make(map[string]float64),
		PriorityCounts:  make(map[string]int),
		AddOnCounts:     make(map[string]int),
		AddOnRevenue:    make(map[string]float64),
		DiscountCounts:  make(map[string]int),
		DiscountAmounts: make(map[string]float64),
		ConfirmedByDay:  make(map[string]int),
	}

	service := make([]models.TransactionRecord, 0, len(in.Transactions))
	for _, tx := range in.Transactions {
		if tx.Disposition.Lost() {
			snap.CancelCount++
			snap.CancelLostRevenue += tx.Price
			continue
		}
		service = append(service, tx)
	}
	snap.ServiceCount = len(service)

	aggregateAttendance(&snap, in.Attendance)
	aggregateService(&snap, service)
	aggregateCustomers(&snap, service, in.FirstVisits)

	if total := snap.ServiceCount + snap.CancelCount; total > 0 {
		snap.CancellationRate = float64(snap.CancelCount) / float64(total) * 100
	}
	if snap.MinutesScheduled > 0 {
		snap.WorkingRate = float64(snap.MinutesWorked) / float64(snap.MinutesScheduled) * 100
	}
	if snap.ServiceCount > 0 {
		snap.AverageTicket = snap.TotalSales / float64(snap.ServiceCount)
	}

	return snap
}

func aggregateAttendance(snap *MetricsSnapshot, attendance []models.AttendanceRecord) {
	records := make([]models.AttendanceRecord, len(attendance))
	copy(records, attendance)
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	// Duplicate rows for the same date must not inflate the worked-day count.
	workedSet := make(map[string]struct{})
	scheduledSet := make(map[string]struct{})
	absenceFlags := make([]bool, 0, len(records))

	for _, rec := range records {
		key := rec.DateKey()
		scheduledSet[key] = struct{}{}
		absenceFlags = append(absenceFlags, rec.Status == models.AttendanceStatusAbsent)

		if rec.Status == models.AttendanceStatusAbsent {
			snap.AbsentDays++
		}
		if rec.Status.CountsAsWorked() {
			workedSet[key] = struct{}{}
			if key > snap.LastWorkedDate {
				snap.LastWorkedDate = key
			}
		}
		if rec.StartTime != nil && rec.EndTime != nil {
			snap.MinutesScheduled += SpanMinutes(*rec.StartTime, *rec.EndTime)
		}
	}

	snap.WorkedDays = len(workedSet)
	snap.ScheduledDays = len(scheduledSet)
	snap.LongestAbsenceRun = LongestRun(absenceFlags)

	snap.WorkedDates = make([]string, 0, len(workedSet))
	for key := range workedSet {
		snap.WorkedDates = append(snap.WorkedDates, key)
	}
	sort.Strings(snap.WorkedDates)
}

func aggregateService(snap *MetricsSnapshot, service []models.TransactionRecord) {
	addOnUsed := 0

	for _, tx := range service {
		snap.TotalSales += tx.Price
		snap.TotalPayout += tx.CastPayout
		snap.ConfirmedByDay[tx.DateKey()]++

		if tx.StartTime != nil && tx.EndTime != nil {
			snap.MinutesWorked += SpanMinutes(*tx.StartTime, *tx.EndTime)
		}

		pkg := tx.Package
		if pkg == "" {
			pkg = noneBucket
		}
		snap.PackageCounts[pkg]++
		snap.PackageRevenue[pkg] += tx.Price

		if tx.PriorityBooking != "" {
			snap.PriorityCounts[tx.PriorityBooking]++
		}

		// Add-on and discount fields are normalized at ingestion; anything
		// that failed to normalize arrives as an empty list and lands in the
		// explicit none bucket instead of aborting the aggregation. The none
		// bucket is not exclusive with the per-label buckets: a
		// transaction contributes once per add-on it carries, so bucket sums
		// may exceed the transaction count.
		if len(tx.AddOns) > 0 {
			addOnUsed++
			share := tx.AddOnPrice / float64(len(tx.AddOns))
			for _, label := range tx.AddOns {
				snap.AddOnCounts[label]++
				snap.AddOnRevenue[label] += share
			}
		} else {
			snap.AddOnNoneCount++
		}

		if len(tx.Discounts) > 0 {
			share := tx.DiscountAmount / float64(len(tx.Discounts))
			for _, code := range tx.Discounts {
				snap.DiscountCounts[code]++
				snap.DiscountAmounts[code] += share
			}
		} else if tx.DiscountAmount > 0 {
			snap.DiscountCounts[noneBucket]++
			snap.DiscountAmounts[noneBucket] += tx.DiscountAmount
		}
	}

	if snap.ServiceCount > 0 {
		snap.AddOnUsageRate = float64(addOnUsed) / float64(snap.ServiceCount) * 100
	}
}

func aggregateCustomers(snap *MetricsSnapshot, service []models.TransactionRecord, firstVisits map[string]time.Time) {
	visits := make(map[string][]time.Time)
	for _, tx := range service {
		if tx.CustomerID == nil || *tx.CustomerID == "" {
			continue
		}
		visits[*tx.CustomerID] = append(visits[*tx.CustomerID], tx.Timestamp)
	}

	newIDs := make([]string, 0, len(visits))
	for customerID, stamps := range visits {
		sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

		first := stamps[0]
		if known, ok := firstVisits[customerID]; ok {
			first = known
		}
		// New this window means the first-ever visit to this cast happened
		// now, not merely the first visit inside the window.
		if !snap.Window.Contains(first) {
			continue
		}

		newIDs = append(newIDs, customerID)
		if len(stamps) >= 2 {
			snap.RepeatCustomerCount++
			snap.RepeatVisits += len(stamps) - 1
		}
	}

	sort.Strings(newIDs)
	snap.NewCustomerIDs = newIDs
	snap.NewCustomerCount = len(newIDs)
	if snap.NewCustomerCount > 0 {
		snap.RepeatRate = float64(snap.RepeatCustomerCount) / float64(snap.NewCustomerCount) * 100
	}
}
