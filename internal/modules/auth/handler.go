package auth

import (
	"errors"
	"net/http"

	"adservice/internal/logging"
	"adservice/internal/pkg/response"
	"adservice/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.POST("/admin/login", h.Login)
}

// Login exchanges admin credentials for a bearer token.
// POST /api/admin/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, ErrNotConfigured):
			response.Error(c, http.StatusServiceUnavailable, "Admin login is not configured")
		default:
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("admin login failed")
			response.Error(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":      res.Token,
		"expires_in": res.ExpiresIn,
	})
}
