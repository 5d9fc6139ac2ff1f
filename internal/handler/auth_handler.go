package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoshigumi/cast-console-api/internal/middleware"
	"github.com/hoshigumi/cast-console-api/internal/models"
	"github.com/hoshigumi/cast-console-api/internal/service"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
	"github.com/hoshigumi/cast-console-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login authenticates a staff account by email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me returns the authenticated user attached by the JWT middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	user, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
