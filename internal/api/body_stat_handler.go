package api

import (
	"baisics/coach-api/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type BodyStatHandler struct {
	bodyStatService service.BodyStatService
}

func NewBodyStatHandler(bodyStatService service.BodyStatService) *BodyStatHandler {
	return &BodyStatHandler{bodyStatService: bodyStatService}
}

type RecordStatRequest struct {
	RecordedAt *time.Time `json:"recordedAt"`
	WeightKg   *float64   `json:"weightKg"`
	BodyFatPct *float64   `json:"bodyFatPct"`
	WaistCm    *float64   `json:"waistCm"`
	Notes      string     `json:"notes"`
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"` // e.g. "image/jpeg"
}

type ConfirmUploadRequest struct {
	ObjectKey   string  `json:"objectKey" binding:"required"`
	FileName    string  `json:"fileName" binding:"required"`
	FileSize    int64   `json:"fileSize" binding:"omitempty,min=0"`
	ContentType string  `json:"contentType" binding:"required"`
	BodyStatID  *string `json:"bodyStatId"`
}

func (h *BodyStatHandler) RecordStat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req RecordStatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	stat, err := h.bodyStatService.RecordStat(c.Request.Context(), userID, service.RecordStatInput{
		RecordedAt: req.RecordedAt,
		WeightKg:   req.WeightKg,
		BodyFatPct: req.BodyFatPct,
		WaistCm:    req.WaistCm,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err, "Failed to record body stat.")
		return
	}
	c.JSON(http.StatusCreated, stat)
}

func (h *BodyStatHandler) ListStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := h.bodyStatService.ListStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve body stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RequestPhotoUploadURL godoc
// @Summary Get a pre-signed URL to upload a progress photo
// @Description Returns a URL the client PUTs the image to directly, plus the object key to confirm afterwards.
// @Tags Body Stats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uploadRequest body RequestUploadURLRequest true "Upload content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Content type is not an image"
// @Failure 503 {object} gin.H "Photo storage is not configured"
// @Router /body-stats/photos/upload-url [post]
func (h *BodyStatHandler) RequestPhotoUploadURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.bodyStatService.RequestPhotoUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to get upload URL.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPhotoUpload godoc
// @Summary Confirm a progress photo upload
// @Description Records the photo metadata once the client has finished the upload.
// @Tags Body Stats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confirmRequest body ConfirmUploadRequest true "Upload confirmation details"
// @Success 201 {object} domain.ProgressPhoto
// @Failure 403 {object} gin.H "Object key belongs to another user"
// @Failure 409 {object} gin.H "Photo already confirmed"
// @Router /body-stats/photos/confirm [post]
func (h *BodyStatHandler) ConfirmPhotoUpload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	bodyStatID, ok := optionalID(c, "bodyStatId", req.BodyStatID)
	if !ok {
		return
	}

	photo, err := h.bodyStatService.ConfirmPhotoUpload(c.Request.Context(), userID, service.ConfirmPhotoInput{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		Size:        req.FileSize,
		ContentType: req.ContentType,
		BodyStatID:  bodyStatID,
	})
	if err != nil {
		respondError(c, err, "Failed to confirm upload.")
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *BodyStatHandler) ListPhotos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	photos, err := h.bodyStatService.ListPhotos(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve photos.")
		return
	}
	c.JSON(http.StatusOK, photos)
}
