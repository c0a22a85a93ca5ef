package selection

import (
	"errors"
	"net/http"

	"adservice/internal/database"
	"adservice/internal/logging"
	"adservice/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/ads/select", h.Select)
}

// Select chooses an ad for the requesting device.
// GET /api/ads/select?macAddress=&sessionId=&deviceType=
func (h *Handler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.MACAddress == "" {
		response.Error(c, http.StatusBadRequest, "macAddress is required")
		return
	}

	ctx := c.Request.Context()
	ad, err := h.svc.SelectAd(ctx, req.MACAddress, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "Invalid macAddress")
		case errors.Is(err, ErrNoAdsAvailable):
			response.Error(c, http.StatusNotFound, "No ads available")
		default:
			logging.Ctx(ctx).Error().Err(err).Bool("timeout", database.IsTimeout(err)).Msg("ad selection failed")
			response.Error(c, http.StatusInternalServerError, "Failed to select ad")
		}
		return
	}

	if req.DeviceType != "" {
		logging.Ctx(ctx).Debug().Str("device_type", req.DeviceType).Int64("ad_id", ad.ID).Msg("select request")
	}

	response.Success(c, http.StatusOK, gin.H{"ad": ad})
}
