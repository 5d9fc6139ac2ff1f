package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hoshigumi/cast-console-api/internal/analytics"
	"github.com/hoshigumi/cast-console-api/internal/models"
	"github.com/hoshigumi/cast-console-api/internal/repository"
	"github.com/hoshigumi/cast-console-api/pkg/config"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
)

// RosterRepository describes the roster access required by analysis flows.
type RosterRepository interface {
	List(ctx context.Context, filter repository.CastFilter) ([]models.Cast, int, error)
	FindByID(ctx context.Context, id string) (*models.Cast, error)
}

// AttendanceLoader fetches shift rows per window.
type AttendanceLoader interface {
	ListByWindow(ctx context.Context, castID string, from, to time.Time) ([]models.AttendanceRecord, error)
}

// TransactionLoader fetches engagement rows per window plus customer history.
type TransactionLoader interface {
	ListByWindow(ctx context.Context, castID string, from, to time.Time) ([]models.TransactionRecord, error)
	FirstVisits(ctx context.Context, castID string) (map[string]time.Time, error)
}

// CareLoader fetches and writes the cast-care records feeding the risk
// classifier.
type CareLoader interface {
	DiaryPosts(ctx context.Context, from, to time.Time) ([]models.DiaryPost, error)
	CaseNotes(ctx context.Context, castID string) ([]models.CaseNote, error)
	Meetings(ctx context.Context, castID string, from, to time.Time) ([]models.Meeting, error)
	TargetEarnings(ctx context.Context, castID string, fallback float64) (float64, error)
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	CreateCaseNote(ctx context.Context, note *models.CaseNote) error
}

// CastAnalysisService produces the monthly per-cast analysis report and owns
// the care-record writes that invalidate it.
type CastAnalysisService struct {
	casts        RosterRepository
	attendance   AttendanceLoader
	transactions TransactionLoader
	care         CareLoader
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          config.AnalyticsConfig
	now          func() time.Time
}

// NewCastAnalysisService constructs the analysis service.
func NewCastAnalysisService(
	casts RosterRepository,
	attendance AttendanceLoader,
	transactions TransactionLoader,
	care CareLoader,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.AnalyticsConfig,
) *CastAnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CastAnalysisService{
		casts:        casts,
		attendance:   attendance,
		transactions: transactions,
		care:         care,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test use only.
func (s *CastAnalysisService) WithClock(now func() time.Time) *CastAnalysisService {
	s.now = now
	return s
}

// Analyze produces the full analysis report for one cast and one "YYYY-MM"
// month. The boolean reports whether the payload came from cache.
func (s *CastAnalysisService) Analyze(ctx context.Context, castID, month string) (*analytics.AnalysisReport, bool, error) {
	windows, err := analytics.ResolveWindows(month)
	if err != nil {
		return nil, false, err
	}

	cacheKey := analysisCacheKey(castID, month)
	var cached analytics.AnalysisReport
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	cast, err := s.casts.FindByID(ctx, castID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "cast not found")
		}
		return nil, false, appErrors.WrapInternal(err)
	}

	inputs, err := s.loadReportInputs(ctx, cast, month, windows)
	if err != nil {
		return nil, false, err
	}

	report := analytics.BuildReport(*inputs)
	if s.metrics != nil {
		s.metrics.RecordAnalysisRun()
	}

	if err := s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("cache analysis report", zap.String("key", cacheKey), zap.Error(err))
	}
	return &report, false, nil
}

func (s *CastAnalysisService) loadReportInputs(ctx context.Context, cast *models.Cast, month string, windows analytics.Windows) (*analytics.ReportInputs, error) {
	start := s.now()

	inputs := &analytics.ReportInputs{
		CastID:     cast.ID,
		CastName:   cast.Name,
		Month:      month,
		Windows:    windows,
		Thresholds: s.thresholds(),
		Now:        s.now(),
	}

	spans := []struct {
		window analytics.MonthlyWindow
		dest   *analytics.WindowRecords
	}{
		{windows.Current, &inputs.Current},
		{windows.Previous, &inputs.Previous},
		{windows.TwoBack, &inputs.TwoBack},
	}
	for _, span := range spans {
		attendance, err := s.attendance.ListByWindow(ctx, cast.ID, span.window.Start, span.window.End)
		if err != nil {
			return nil, appErrors.WrapInternal(err)
		}
		transactions, err := s.transactions.ListByWindow(ctx, cast.ID, span.window.Start, span.window.Start.AddDate(0, 1, 0))
		if err != nil {
			return nil, appErrors.WrapInternal(err)
		}
		span.dest.Attendance = attendance
		span.dest.Transactions = transactions
	}

	firstVisits, err := s.transactions.FirstVisits(ctx, cast.ID)
	if err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	inputs.FirstVisits = firstVisits

	posts, err := s.care.DiaryPosts(ctx, windows.Current.Start, windows.Current.End)
	if err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	inputs.DiaryPosts = posts

	notes, err := s.care.CaseNotes(ctx, cast.ID)
	if err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	inputs.CaseNotes = notes

	meetings, err := s.care.Meetings(ctx, cast.ID, windows.Current.Start, windows.Current.End)
	if err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	inputs.Meetings = meetings

	target, err := s.care.TargetEarnings(ctx, cast.ID, s.cfg.DefaultTarget)
	if err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	inputs.TargetEarnings = target

	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analysis_inputs", time.Since(start))
	}
	return inputs, nil
}

// AddMeeting records a one-on-one and drops the cast's cached reports.
func (s *CastAnalysisService) AddMeeting(ctx context.Context, castID string, req models.CreateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	if _, err := s.casts.FindByID(ctx, castID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cast not found")
		}
		return nil, appErrors.WrapInternal(err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "meeting date must be YYYY-MM-DD")
	}

	meeting := &models.Meeting{
		CastID: castID,
		Date:   date,
		Memo:   req.Memo,
		Result: req.Result,
	}
	if err := s.care.CreateMeeting(ctx, meeting); err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	s.invalidateAnalysis(ctx, castID)
	return meeting, nil
}

// AddCaseNote records a staff memo and drops the cast's cached reports.
func (s *CastAnalysisService) AddCaseNote(ctx context.Context, castID string, req models.CreateCaseNoteRequest) (*models.CaseNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case note payload")
	}
	if _, err := s.casts.FindByID(ctx, castID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cast not found")
		}
		return nil, appErrors.WrapInternal(err)
	}

	note := &models.CaseNote{
		CastID:    castID,
		Text:      req.Text,
		StaffName: req.StaffName,
		CreatedAt: s.now(),
	}
	if err := s.care.CreateCaseNote(ctx, note); err != nil {
		return nil, appErrors.WrapInternal(err)
	}
	s.invalidateAnalysis(ctx, castID)
	return note, nil
}

// Roster lists casts with paging metadata.
func (s *CastAnalysisService) Roster(ctx context.Context, filter repository.CastFilter) ([]models.Cast, *models.Pagination, error) {
	casts, total, err := s.casts.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.WrapInternal(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
	}
	return casts, pagination, nil
}

func (s *CastAnalysisService) invalidateAnalysis(ctx context.Context, castID string) {
	pattern := fmt.Sprintf("analysis:cast:%s:*", castID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("invalidate analysis cache", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *CastAnalysisService) thresholds() analytics.Thresholds {
	th := analytics.Thresholds{
		WorkingRateFloor: s.cfg.WorkingRateFloor,
		EarningsFloor:    s.cfg.EarningsFloor,
		EarningsDrop:     s.cfg.EarningsDrop,
		AbsenceRateFloor: s.cfg.AbsenceRateFloor,
		AbsenceRunDays:   s.cfg.AbsenceRunDays,
		CancelRateFloor:  s.cfg.CancelRateFloor,
		StaleDays:        s.cfg.StaleDays,
		LowBookingPerDay: s.cfg.LowBookingPerDay,
		LowBookingRun:    s.cfg.LowBookingRun,
		DiaryMultiplier:  s.cfg.DiaryMultiplier,
		ConcernKeywords:  s.cfg.ConcernKeywords,
	}
	if len(th.ConcernKeywords) == 0 {
		th.ConcernKeywords = analytics.DefaultThresholds().ConcernKeywords
	}
	return th
}

func analysisCacheKey(castID, month string) string {
	return fmt.Sprintf("analysis:cast:%s:month:%s", castID, month)
}
