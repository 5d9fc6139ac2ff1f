package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hoshigumi/cast-console-api/internal/analytics"
	"github.com/hoshigumi/cast-console-api/internal/models"
	"github.com/hoshigumi/cast-console-api/pkg/config"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
)

// GridDay is one calendar date in the attendance grid. Offsets are minutes
// from shop open so the console can place shift bars without re-deriving the
// overnight rules.
type GridDay struct {
	Date        string                  `json:"date"`
	Status      models.AttendanceStatus `json:"status"`
	StartTime   *string                 `json:"start_time,omitempty"`
	EndTime     *string                 `json:"end_time,omitempty"`
	StartOffset *int                    `json:"start_offset,omitempty"`
	EndOffset   *int                    `json:"end_offset,omitempty"`
	Note        *string                 `json:"note,omitempty"`
}

// AttendanceGrid is the month view of one cast's shifts mapped onto the
// shop's business-hours axis.
type AttendanceGrid struct {
	CastID      string    `json:"cast_id"`
	Month       string    `json:"month"`
	OpenTime    string    `json:"open_time"`
	CloseTime   string    `json:"close_time"`
	AxisMinutes int       `json:"axis_minutes"`
	Days        []GridDay `json:"days"`
}

// AttendanceService serves the attendance grid.
type AttendanceService struct {
	casts      RosterRepository
	attendance AttendanceLoader
	cache      *CacheService
	logger     *zap.Logger
	shop       config.ShopConfig
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(casts RosterRepository, attendance AttendanceLoader, cache *CacheService, logger *zap.Logger, shop config.ShopConfig) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{casts: casts, attendance: attendance, cache: cache, logger: logger, shop: shop}
}

// Grid returns one cast's attendance grid for a "YYYY-MM" month. The boolean
// reports whether the payload came from cache.
func (s *AttendanceService) Grid(ctx context.Context, castID, month string) (*AttendanceGrid, bool, error) {
	windows, err := analytics.ResolveWindows(month)
	if err != nil {
		return nil, false, err
	}

	cacheKey := fmt.Sprintf("attendance:cast:%s:month:%s", castID, month)
	var cached AttendanceGrid
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	if _, err := s.casts.FindByID(ctx, castID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "cast not found")
		}
		return nil, false, appErrors.WrapInternal(err)
	}

	records, err := s.attendance.ListByWindow(ctx, castID, windows.Current.Start, windows.Current.End)
	if err != nil {
		return nil, false, appErrors.WrapInternal(err)
	}

	grid := s.buildGrid(castID, windows.Current, records)
	if err := s.cache.Set(ctx, cacheKey, grid, 0); err != nil {
		s.logger.Warn("cache attendance grid", zap.String("key", cacheKey), zap.Error(err))
	}
	return grid, false, nil
}

func (s *AttendanceService) buildGrid(castID string, window analytics.MonthlyWindow, records []models.AttendanceRecord) *AttendanceGrid {
	openMin, closeMin := analytics.GridBounds(s.shop.OpenTime, s.shop.CloseTime)

	byDate := make(map[string]models.AttendanceRecord, len(records))
	for _, rec := range records {
		// The latest stored row wins when a date has duplicates.
		byDate[rec.DateKey()] = rec
	}

	days := make([]GridDay, 0, window.Days())
	for d := 0; d < window.Days(); d++ {
		date := window.Start.AddDate(0, 0, d).Format("2006-01-02")
		day := GridDay{Date: date, Status: models.AttendanceStatusUnset}

		rec, ok := byDate[date]
		if !ok {
			days = append(days, day)
			continue
		}

		day.Status = rec.Status
		day.Note = rec.Note
		day.StartTime = rec.StartTime
		day.EndTime = rec.EndTime
		if rec.StartTime != nil && rec.EndTime != nil {
			start, end := placeShift(*rec.StartTime, *rec.EndTime, openMin, closeMin)
			day.StartOffset = &start
			day.EndOffset = &end
		}
		days = append(days, day)
	}

	return &AttendanceGrid{
		CastID:      castID,
		Month:       window.Label,
		OpenTime:    s.shop.OpenTime,
		CloseTime:   s.shop.CloseTime,
		AxisMinutes: closeMin - openMin,
		Days:        days,
	}
}

// placeShift maps a shift onto the business-hours axis. A start before shop
// open belongs to the post-midnight stretch of the service day, and both ends
// clamp to the axis so malformed rows cannot draw outside the grid.
func placeShift(startText, endText string, openMin, closeMin int) (int, int) {
	start := analytics.ToMinutes(startText)
	if start < openMin {
		start += 24 * 60
	}
	end := analytics.ToMinutes(endText)
	if end <= start {
		end += 24 * 60
	}

	if start > closeMin {
		start = closeMin
	}
	if end > closeMin {
		end = closeMin
	}
	if end < start {
		end = start
	}
	return start - openMin, end - openMin
}
