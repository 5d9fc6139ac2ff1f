package models

import "time"

// DiaryPost is one self-promotion diary entry scraped from the portal feed.
// Author names are free text and are matched against the roster by exact,
// whitespace-trimmed comparison.
type DiaryPost struct {
	ID     string    `db:"id" json:"id"`
	Author string    `db:"author" json:"author"`
	Date   time.Time `db:"date" json:"date"`
	Title  *string   `db:"title" json:"title,omitempty"`
}

// CaseNote is a staff memo attached to a cast.
type CaseNote struct {
	ID        string    `db:"id" json:"id"`
	CastID    string    `db:"cast_id" json:"cast_id"`
	Text      string    `db:"text" json:"text"`
	StaffName string    `db:"staff_name" json:"staff_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Meeting is a recorded one-on-one between staff and a cast.
type Meeting struct {
	ID     string    `db:"id" json:"id"`
	CastID string    `db:"cast_id" json:"cast_id"`
	Date   time.Time `db:"meeting_date" json:"date"`
	Memo   *string   `db:"memo" json:"memo,omitempty"`
	Result *string   `db:"result" json:"result,omitempty"`
}

// CreateMeetingRequest is the write payload for recording a meeting.
type CreateMeetingRequest struct {
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Memo   *string `json:"memo,omitempty"`
	Result *string `json:"result,omitempty"`
}

// CreateCaseNoteRequest is the write payload for a staff memo.
type CreateCaseNoteRequest struct {
	Text      string `json:"text" validate:"required"`
	StaffName string `json:"staff_name" validate:"required"`
}
