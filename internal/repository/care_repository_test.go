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

func TestCareRepositoryTargetEarningsFallback(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCareRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT target_earnings FROM cast_targets")).
		WithArgs("cast-9").
		WillReturnRows(sqlmock.NewRows([]string{"target_earnings"}))

	target, err := repo.TargetEarnings(context.Background(), "cast-9", 300000)
	require.NoError(t, err)
	assert.Equal(t, 300000.0, target)
}

func TestCareRepositoryTargetEarningsStored(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCareRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT target_earnings FROM cast_targets")).
		WithArgs("cast-1").
		WillReturnRows(sqlmock.NewRows([]string{"target_earnings"}).AddRow(450000.0))

	target, err := repo.TargetEarnings(context.Background(), "cast-1", 300000)
	require.NoError(t, err)
	assert.Equal(t, 450000.0, target)
}

func TestCareRepositoryCaseNotesNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCareRepository(db)

	newer := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "cast_id", "text", "staff_name", "created_at"}).
		AddRow("note-2", "cast-1", "退店を考えていると相談された", "店長", newer).
		AddRow("note-1", "cast-1", "特記事項なし", "店長", newer.AddDate(0, 0, -7))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, cast_id, text, staff_name, created_at FROM case_notes")).
		WithArgs("cast-1").
		WillReturnRows(rows)

	notes, err := repo.CaseNotes(context.Background(), "cast-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "note-2", notes[0].ID)
}

func TestCareRepositoryCreateMeeting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCareRepository(db)

	memo := "同伴出勤の希望あり"
	meeting := &models.Meeting{
		CastID: "cast-1",
		Date:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Memo:   &memo,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meetings")).
		WithArgs(sqlmock.AnyArg(), "cast-1", meeting.Date, &memo, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateMeeting(context.Background(), meeting))
	assert.NotEmpty(t, meeting.ID, "missing id gets generated")
	require.NoError(t, mock.ExpectationsWereMet())
}
