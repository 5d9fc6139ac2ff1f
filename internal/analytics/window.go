package analytics

import (
	"time"

	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
)

// MonthlyWindow is an inclusive calendar-month date range. Windows are derived
// from the reference month label and never persisted.
type MonthlyWindow struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the timestamp falls on a date inside the window.
func (w MonthlyWindow) Contains(t time.Time) bool {
	next := w.Start.AddDate(0, 1, 0)
	return !t.Before(w.Start) && t.Before(next)
}

// Days returns the number of calendar days in the window.
func (w MonthlyWindow) Days() int {
	return w.End.Day()
}

// Windows holds the three rolling monthly windows live during one analysis
// run.
type Windows struct {
	Current  MonthlyWindow `json:"current"`
	Previous MonthlyWindow `json:"previous"`
	TwoBack  MonthlyWindow `json:"two_back"`
}

// ResolveWindows computes the current, previous, and two-back calendar-month
// windows for a "YYYY-MM" label, respecting variable month lengths, leap
// years, and year rollover at the January boundary.
func ResolveWindows(monthLabel string) (Windows, error) {
	start, err := time.Parse("2006-01", monthLabel)
	if err != nil {
		return Windows{}, appErrors.Clone(appErrors.ErrInvalidMonth, "")
	}

	return Windows{
		Current:  monthWindow(start),
		Previous: monthWindow(start.AddDate(0, -1, 0)),
		TwoBack:  monthWindow(start.AddDate(0, -2, 0)),
	}, nil
}

func monthWindow(start time.Time) MonthlyWindow {
	return MonthlyWindow{
		Label: start.Format("2006-01"),
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}
}
