package api

import (
	"baisics/coach-api/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NutritionHandler struct {
	nutritionService service.NutritionService
}

func NewNutritionHandler(nutritionService service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

// CreatePlanRequest carries a nutrition plan. Dates are RFC 3339.
type CreatePlanRequest struct {
	ProgramID     *string    `json:"programId"`
	Phase         *int       `json:"phase"`
	DailyCalories int        `json:"dailyCalories" binding:"required"`
	ProteinGrams  int        `json:"proteinGrams"`
	CarbGrams     int        `json:"carbGrams"`
	FatGrams      int        `json:"fatGrams"`
	EffectiveDate *time.Time `json:"effectiveDate"`
	EndDate       *time.Time `json:"endDate"`
}

// CreatePlan godoc
// @Summary Create a nutrition plan for the caller
// @Tags Nutrition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan"
// @Success 201 {object} domain.NutritionPlan
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Program not found"
// @Router /nutrition-plans [post]
func (h *NutritionHandler) CreatePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.createPlan(c, userID, userID)
}

func (h *NutritionHandler) createPlan(c *gin.Context, userID, createdBy primitive.ObjectID) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	programID, ok := optionalID(c, "programId", req.ProgramID)
	if !ok {
		return
	}

	plan, err := h.nutritionService.CreatePlan(c.Request.Context(), userID, createdBy, service.CreatePlanInput{
		ProgramID:     programID,
		Phase:         req.Phase,
		DailyCalories: req.DailyCalories,
		ProteinGrams:  req.ProteinGrams,
		CarbGrams:     req.CarbGrams,
		FatGrams:      req.FatGrams,
		EffectiveDate: req.EffectiveDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		respondError(c, err, "Failed to create nutrition plan.")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *NutritionHandler) ListPlans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	plans, err := h.nutritionService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve nutrition plans.")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetTargets resolves the caller's targets at ?at= (RFC 3339), default now.
func (h *NutritionHandler) GetTargets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "at must be an RFC 3339 timestamp")
			return
		}
		at = parsed
	}
	c.JSON(http.StatusOK, h.nutritionService.ResolveTargets(c.Request.Context(), userID, at))
}
