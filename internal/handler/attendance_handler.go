package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoshigumi/cast-console-api/internal/middleware"
	"github.com/hoshigumi/cast-console-api/internal/service"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
	"github.com/hoshigumi/cast-console-api/pkg/response"
)

// GridService describes the attendance grid use case.
type GridService interface {
	Grid(ctx context.Context, castID, month string) (*service.AttendanceGrid, bool, error)
}

// AttendanceHandler exposes the attendance grid endpoint.
type AttendanceHandler struct {
	attendance GridService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance GridService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Grid returns one cast's monthly attendance grid.
func (h *AttendanceHandler) Grid(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month query parameter is required"))
		return
	}

	start := time.Now()
	grid, cacheHit, err := h.attendance.Grid(c.Request.Context(), c.Param("id"), month)
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
	response.JSON(c, http.StatusOK, grid, nil, meta)
}
