package ads

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"adservice/internal/domain"
	"adservice/internal/logging"
	"adservice/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields around the video part.
const multipartOverhead = 1 << 20

type Handler struct {
	svc   *Service
	media *MediaStore
}

func NewHandler(svc *Service, media *MediaStore) *Handler {
	return &Handler{svc: svc, media: media}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/ads", h.List)
	admin.POST("/ads/upload", h.Upload)
	admin.PUT("/ads/:id/status", h.UpdateStatus)
}

// RegisterMediaRoutes serves stored videos under /ads/.
func (h *Handler) RegisterMediaRoutes(r gin.IRoutes) {
	r.GET("/ads/*filepath", h.ServeMedia)
}

// List returns all ads with impression statistics.
// GET /api/ads
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.ListAdsWithStats(c.Request.Context())
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("list ads failed")
		response.Error(c, http.StatusInternalServerError, "Failed to list ads")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ads": items})
}

// Upload accepts a multipart form with a "video" file and optional name, advertiser_id,
// weight and duration fields.
// POST /api/ads/upload
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.MaxUploadBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		response.Error(c, http.StatusBadRequest, "No video file provided")
		return
	}

	in := UploadInput{File: fileHeader, Name: c.PostForm("name")}
	if in.AdvertiserID, err = formInt64(c, "advertiser_id"); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid advertiser_id")
		return
	}
	if in.Weight, err = formInt(c, "weight"); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid weight")
		return
	}
	if in.DurationSeconds, err = formInt(c, "duration"); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid duration")
		return
	}

	ctx := c.Request.Context()
	ad, err := h.svc.UploadAd(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile):
			response.Error(c, http.StatusBadRequest, "No video file provided")
		case errors.Is(err, ErrEmptyFilename):
			response.Error(c, http.StatusBadRequest, "No file selected")
		case errors.Is(err, ErrInvalidFileType):
			response.Error(c, http.StatusBadRequest, "Invalid file type. Allowed: mp4, webm, ogg")
		case errors.Is(err, ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "Invalid weight or duration")
		default:
			logging.Ctx(ctx).Error().Err(err).Str("file", fileHeader.Filename).Msg("upload ad failed")
			response.Error(c, http.StatusInternalServerError, "Error uploading ad")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Ad uploaded successfully",
		"ad_id":   ad.ID,
	})
}

// UpdateStatus changes the status and/or weight of an ad.
// PUT /api/ads/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid ad ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var status *domain.AdStatus
	if req.Status != nil {
		s := domain.AdStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		status = &s
	}

	ctx := c.Request.Context()
	if err := h.svc.UpdateStatus(ctx, id, status, req.Weight); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "Invalid status or weight")
		case errors.Is(err, ErrAdNotFound):
			response.Error(c, http.StatusNotFound, "Ad not found")
		default:
			logging.Ctx(ctx).Error().Err(err).Int64("ad_id", id).Msg("update ad failed")
			response.Error(c, http.StatusInternalServerError, "Error updating ad")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Ad updated successfully"})
}

// ServeMedia streams a stored file.
// GET /ads/*filepath
func (h *Handler) ServeMedia(c *gin.Context) {
	p, ok := h.media.Resolve(c.Param("filepath"))
	if !ok {
		response.Error(c, http.StatusNotFound, "Resource not found")
		return
	}
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		response.Error(c, http.StatusNotFound, "Resource not found")
		return
	}
	c.File(p)
}

func formInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formInt64(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
