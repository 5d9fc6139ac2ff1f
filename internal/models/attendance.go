package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusWorked     AttendanceStatus = "worked"
	AttendanceStatusLate       AttendanceStatus = "late"
	AttendanceStatusEarlyLeave AttendanceStatus = "early_leave"
	AttendanceStatusAbsent     AttendanceStatus = "absent"
	AttendanceStatusUnset      AttendanceStatus = "unset"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusWorked, AttendanceStatusLate, AttendanceStatusEarlyLeave,
		AttendanceStatusAbsent, AttendanceStatusUnset:
		return true
	default:
		return false
	}
}

// CountsAsWorked reports whether the status marks an actually worked day.
// Late arrivals and early leaves still count as attendance.
func (s AttendanceStatus) CountsAsWorked() bool {
	switch s {
	case AttendanceStatusWorked, AttendanceStatusLate, AttendanceStatusEarlyLeave:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single shift row for one cast on one calendar date.
// Worked/late/early-leave rows should carry both start and end times; absent
// and unset rows carry no time range. Attendance data is frequently
// incomplete, so readers must tolerate missing times.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	CastID    string           `db:"cast_id" json:"cast_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	StartTime *string          `db:"start_time" json:"start_time,omitempty"`
	EndTime   *string          `db:"end_time" json:"end_time,omitempty"`
	Note      *string          `db:"note" json:"note,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// DateKey returns the calendar-date key used for per-day grouping.
func (r AttendanceRecord) DateKey() string {
	return r.Date.Format("2006-01-02")
}
