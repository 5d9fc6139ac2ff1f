package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// CareRepository provides database access to the cast-care records: diary
// posts, staff case notes, one-on-one meetings, and per-cast earnings targets.
type CareRepository struct {
	db *sqlx.DB
}

// NewCareRepository constructs the repository.
func NewCareRepository(db *sqlx.DB) *CareRepository {
	return &CareRepository{db: db}
}

// DiaryPosts returns every portal diary post dated in [from, to], inclusive.
// Posts are not pre-filtered by cast because author attribution is a free-text
// match done during analysis.
func (r *CareRepository) DiaryPosts(ctx context.Context, from, to time.Time) ([]models.DiaryPost, error) {
	const query = `SELECT id, author, date, title FROM diary_posts WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var posts []models.DiaryPost
	if err := r.db.SelectContext(ctx, &posts, query, from, to); err != nil {
		return nil, fmt.Errorf("list diary posts: %w", err)
	}
	return posts, nil
}

// CaseNotes returns a cast's staff memos, newest first.
func (r *CareRepository) CaseNotes(ctx context.Context, castID string) ([]models.CaseNote, error) {
	const query = `SELECT id, cast_id, text, staff_name, created_at FROM case_notes WHERE cast_id = $1 ORDER BY created_at DESC`
	var notes []models.CaseNote
	if err := r.db.SelectContext(ctx, &notes, query, castID); err != nil {
		return nil, fmt.Errorf("list case notes: %w", err)
	}
	return notes, nil
}

// Meetings returns a cast's recorded one-on-ones with meeting dates in
// [from, to], inclusive.
func (r *CareRepository) Meetings(ctx context.Context, castID string, from, to time.Time) ([]models.Meeting, error) {
	const query = `SELECT id, cast_id, meeting_date, memo, result
FROM meetings WHERE cast_id = $1 AND meeting_date >= $2 AND meeting_date <= $3 ORDER BY meeting_date DESC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, castID, from, to); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// TargetEarnings returns the cast's monthly payout target, or fallback when
// none has been set.
func (r *CareRepository) TargetEarnings(ctx context.Context, castID string, fallback float64) (float64, error) {
	const query = `SELECT target_earnings FROM cast_targets WHERE cast_id = $1 LIMIT 1`
	var target float64
	if err := r.db.GetContext(ctx, &target, query, castID); err != nil {
		if err == sql.ErrNoRows {
			return fallback, nil
		}
		return 0, fmt.Errorf("get target earnings: %w", err)
	}
	if target <= 0 {
		return fallback, nil
	}
	return target, nil
}

// CreateMeeting persists a one-on-one record.
func (r *CareRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	const query = `INSERT INTO meetings (id, cast_id, meeting_date, memo, result) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, meeting.ID, meeting.CastID, meeting.Date, meeting.Memo, meeting.Result); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

// CreateCaseNote persists a staff memo.
func (r *CareRepository) CreateCaseNote(ctx context.Context, note *models.CaseNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO case_notes (id, cast_id, text, staff_name, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, note.ID, note.CastID, note.Text, note.StaffName, note.CreatedAt); err != nil {
		return fmt.Errorf("create case note: %w", err)
	}
	return nil
}
