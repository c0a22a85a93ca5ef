package impression

import (
	"errors"
	"net/http"

	"adservice/internal/database"
	"adservice/internal/logging"
	"adservice/internal/pkg/response"
	"adservice/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.POST("/impressions", h.Record)
}

// Record stores a watch report from the player.
// POST /api/impressions
func (h *Handler) Record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	ctx := c.Request.Context()
	imp, err := h.svc.RecordImpression(ctx, req.AdID, req.SessionID, req.MACAddress, *req.WatchedDurationSeconds, req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "Validation failed")
		case errors.Is(err, ErrAdNotFound):
			response.Error(c, http.StatusNotFound, "Ad not found")
		default:
			logging.Ctx(ctx).Error().Err(err).Bool("timeout", database.IsTimeout(err)).Int64("ad_id", req.AdID).Msg("record impression failed")
			response.Error(c, http.StatusInternalServerError, "Failed to record impression")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"impression_id": imp.ID})
}
