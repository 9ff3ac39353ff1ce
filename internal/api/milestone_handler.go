package api

import (
	"baisics/coach-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MilestoneHandler struct {
	milestoneService service.MilestoneService
}

func NewMilestoneHandler(milestoneService service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

// GetProgress godoc
// @Summary Milestones earned and the next one to reach
// @Tags Milestones
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.MilestoneProgress
// @Router /milestones [get]
func (h *MilestoneHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.progress(c, userID)
}

func (h *MilestoneHandler) progress(c *gin.Context, userID primitive.ObjectID) {
	progress, err := h.milestoneService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve milestones.")
		return
	}
	c.JSON(http.StatusOK, progress)
}
