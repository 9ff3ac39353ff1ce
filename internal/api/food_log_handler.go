package api

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FoodLogHandler struct {
	foodLogService service.FoodLogService
}

func NewFoodLogHandler(foodLogService service.FoodLogService) *FoodLogHandler {
	return &FoodLogHandler{foodLogService: foodLogService}
}

type LogFoodRequest struct {
	Date         string          `json:"date"` // YYYY-MM-DD, default today
	MealType     domain.MealType `json:"mealType" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Calories     int             `json:"calories"`
	ProteinGrams float64         `json:"proteinGrams"`
	CarbGrams    float64         `json:"carbGrams"`
	FatGrams     float64         `json:"fatGrams"`
}

func (h *FoodLogHandler) LogFood(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req LogFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, err := h.foodLogService.LogFood(c.Request.Context(), userID, service.LogFoodInput{
		Date:         req.Date,
		MealType:     req.MealType,
		Name:         req.Name,
		Calories:     req.Calories,
		ProteinGrams: req.ProteinGrams,
		CarbGrams:    req.CarbGrams,
		FatGrams:     req.FatGrams,
	})
	if err != nil {
		respondError(c, err, "Failed to log food.")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *FoodLogHandler) GetDay(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	day, ok := queryDay(c)
	if !ok {
		return
	}
	entries, err := h.foodLogService.GetDay(c.Request.Context(), userID, day)
	if err != nil {
		respondError(c, err, "Failed to retrieve food log.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(domain.DateLayout), "entries": entries})
}

func (h *FoodLogHandler) DeleteEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.foodLogService.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		respondError(c, err, "Failed to delete food log entry.")
		return
	}
	c.Status(http.StatusNoContent)
}

// DailySummary godoc
// @Summary Day totals against the targets in force that day
// @Description Totals the day's food log, resolves the macro targets that applied on that day and scores compliance over the 7 days ending on it.
// @Tags Food Log
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, default today (UTC)"
// @Success 200 {object} service.DailySummary
// @Failure 400 {object} gin.H "Invalid date"
// @Router /food-log/daily-summary [get]
func (h *FoodLogHandler) DailySummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.summary(c, userID)
}

func (h *FoodLogHandler) summary(c *gin.Context, userID primitive.ObjectID) {
	day, ok := queryDay(c)
	if !ok {
		return
	}
	summary, err := h.foodLogService.DailySummary(c.Request.Context(), userID, day)
	if err != nil {
		respondError(c, err, "Failed to build daily summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func queryDay(c *gin.Context) (time.Time, bool) {
	day, err := service.ParseDay(c.Query("date"), time.Now())
	if err != nil {
		respondError(c, err, "Invalid date")
		return time.Time{}, false
	}
	return day, true
}
