package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

func TestAttendanceRepositoryListByWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "cast_id", "date", "status", "start_time", "end_time", "note", "created_at", "updated_at"}).
		AddRow("att-1", "cast-1", from.AddDate(0, 0, 1), "worked", "10:00", "18:00", nil, now, now).
		AddRow("att-2", "cast-1", from.AddDate(0, 0, 2), "absent", nil, nil, "当日連絡", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, cast_id, date, status, start_time, end_time, note, created_at, updated_at")).
		WithArgs("cast-1", from, to).
		WillReturnRows(rows)

	records, err := repo.ListByWindow(context.Background(), "cast-1", from, to)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.AttendanceStatusWorked, records[0].Status)
	assert.True(t, records[0].Status.CountsAsWorked())
	require.NotNil(t, records[0].StartTime)
	assert.Equal(t, "10:00", *records[0].StartTime)

	assert.Equal(t, models.AttendanceStatusAbsent, records[1].Status)
	assert.Nil(t, records[1].StartTime)

	require.NoError(t, mock.ExpectationsWereMet())
}
