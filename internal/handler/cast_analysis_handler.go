package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoshigumi/cast-console-api/internal/analytics"
	"github.com/hoshigumi/cast-console-api/internal/middleware"
	"github.com/hoshigumi/cast-console-api/internal/models"
	"github.com/hoshigumi/cast-console-api/internal/repository"
	"github.com/hoshigumi/cast-console-api/internal/service"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
	"github.com/hoshigumi/cast-console-api/pkg/response"
)

// AnalysisService describes the analysis use cases the handler exposes.
type AnalysisService interface {
	Roster(ctx context.Context, filter repository.CastFilter) ([]models.Cast, *models.Pagination, error)
	Analyze(ctx context.Context, castID, month string) (*analytics.AnalysisReport, bool, error)
	AddMeeting(ctx context.Context, castID string, req models.CreateMeetingRequest) (*models.Meeting, error)
	AddCaseNote(ctx context.Context, castID string, req models.CreateCaseNoteRequest) (*models.CaseNote, error)
}

// ReportExporter renders analysis reports into downloadable files.
type ReportExporter interface {
	Render(report *analytics.AnalysisReport, format string) (*service.ExportFile, error)
}

// CastAnalysisHandler exposes the roster, analysis, and care-record endpoints.
type CastAnalysisHandler struct {
	analysis AnalysisService
	export   ReportExporter
}

// NewCastAnalysisHandler constructs the handler.
func NewCastAnalysisHandler(analysis AnalysisService, export ReportExporter) *CastAnalysisHandler {
	return &CastAnalysisHandler{analysis: analysis, export: export}
}

// Roster lists casts.
func (h *CastAnalysisHandler) Roster(c *gin.Context) {
	filter := repository.CastFilter{Search: c.Query("search")}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	casts, pagination, err := h.analysis.Roster(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, casts, pagination)
}

// Analysis returns the monthly analysis report for one cast.
func (h *CastAnalysisHandler) Analysis(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month query parameter is required"))
		return
	}

	start := time.Now()
	report, cacheHit, err := h.analysis.Analyze(c.Request.Context(), c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, nil, meta)
}

// Export streams the analysis report as a CSV or PDF download.
func (h *CastAnalysisHandler) Export(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month query parameter is required"))
		return
	}
	format := c.DefaultQuery("format", "csv")

	report, _, err := h.analysis.Analyze(c.Request.Context(), c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.export.Render(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// AddMeeting records a one-on-one meeting for a cast.
func (h *CastAnalysisHandler) AddMeeting(c *gin.Context) {
	var req models.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload"))
		return
	}

	meeting, err := h.analysis.AddMeeting(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meeting)
}

// AddCaseNote records a staff memo for a cast.
func (h *CastAnalysisHandler) AddCaseNote(c *gin.Context) {
	var req models.CreateCaseNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case note payload"))
		return
	}

	note, err := h.analysis.AddCaseNote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}
