package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// AttendanceRepository provides database access to shift rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByWindow returns one cast's shift rows with dates in [from, to],
// inclusive, oldest first. Duplicate rows per date are returned as stored;
// deduplication is an aggregation concern.
func (r *AttendanceRepository) ListByWindow(ctx context.Context, castID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, cast_id, date, status, start_time, end_time, note, created_at, updated_at
FROM attendance WHERE cast_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC, created_at ASC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, castID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance window: %w", err)
	}
	return rows, nil
}
