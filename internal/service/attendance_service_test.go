package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hoshigumi/cast-console-api/internal/models"
	"github.com/hoshigumi/cast-console-api/pkg/config"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
)

func newGridService(t *testing.T, records []models.AttendanceRecord) *AttendanceService {
	t.Helper()
	roster := &fakeRosterRepo{casts: map[string]models.Cast{
		"cast-1": {ID: "cast-1", Name: "みゆ", Active: true},
	}}
	attendance := &fakeAttendanceRepo{records: records}
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	return NewAttendanceService(roster, attendance, cache, zap.NewNop(), config.ShopConfig{
		OpenTime:  "10:00",
		CloseTime: "00:00",
	})
}

func TestGridPlacesOvernightShift(t *testing.T) {
	start := "22:00"
	end := "02:00"
	svc := newGridService(t, []models.AttendanceRecord{
		{
			CastID:    "cast-1",
			Date:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Status:    models.AttendanceStatusWorked,
			StartTime: &start,
			EndTime:   &end,
		},
	})

	grid, cacheHit, err := svc.Grid(context.Background(), "cast-1", "2025-06")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 840, grid.AxisMinutes, "10:00 through end-of-service midnight")
	require.Len(t, grid.Days, 30)

	day := grid.Days[9]
	assert.Equal(t, "2025-06-10", day.Date)
	assert.Equal(t, models.AttendanceStatusWorked, day.Status)
	require.NotNil(t, day.StartOffset)
	require.NotNil(t, day.EndOffset)
	assert.Equal(t, 720, *day.StartOffset, "22:00 is 720 minutes after open")
	assert.Equal(t, 840, *day.EndOffset, "02:00 clamps to the axis end")

	empty := grid.Days[0]
	assert.Equal(t, models.AttendanceStatusUnset, empty.Status)
	assert.Nil(t, empty.StartOffset)
}

func TestGridServesFromCacheOnSecondCall(t *testing.T) {
	svc := newGridService(t, nil)

	_, cacheHit, err := svc.Grid(context.Background(), "cast-1", "2025-06")
	require.NoError(t, err)
	assert.False(t, cacheHit)

	_, cacheHit, err = svc.Grid(context.Background(), "cast-1", "2025-06")
	require.NoError(t, err)
	assert.True(t, cacheHit)
}

func TestGridUnknownCast(t *testing.T) {
	svc := newGridService(t, nil)

	_, _, err := svc.Grid(context.Background(), "cast-404", "2025-06")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
