package api

import (
	"baisics/coach-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoachHandler serves the coach's roster and the per-client views a coach
// may act on. Per-client routes reuse the client-facing handlers once the
// client is confirmed to be on the roster.
type CoachHandler struct {
	coachService    service.CoachService
	programs        *ProgramHandler
	nutrition       *NutritionHandler
	foodLog         *FoodLogHandler
	milestones      *MilestoneHandler
	programService  service.ProgramService
	workoutService  service.WorkoutService
	bodyStatService service.BodyStatService
}

func NewCoachHandler(
	coachService service.CoachService,
	programs *ProgramHandler,
	nutrition *NutritionHandler,
	foodLog *FoodLogHandler,
	milestones *MilestoneHandler,
	programService service.ProgramService,
	workoutService service.WorkoutService,
	bodyStatService service.BodyStatService,
) *CoachHandler {
	return &CoachHandler{
		coachService:    coachService,
		programs:        programs,
		nutrition:       nutrition,
		foodLog:         foodLog,
		milestones:      milestones,
		programService:  programService,
		workoutService:  workoutService,
		bodyStatService: bodyStatService,
	}
}

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// AddClientByEmail godoc
// @Summary Add a client to the coach's roster by email
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added"
// @Failure 403 {object} gin.H "User is not a client"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already has another coach"
// @Router /coach/clients [post]
func (h *CoachHandler) AddClientByEmail(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	client, err := h.coachService.AddClientByEmail(c.Request.Context(), coachID, req.ClientEmail)
	if err != nil {
		respondError(c, err, "Failed to add client.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

func (h *CoachHandler) GetManagedClients(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	clients, err := h.coachService.GetManagedClients(c.Request.Context(), coachID)
	if err != nil {
		respondError(c, err, "Failed to retrieve managed clients.")
		return
	}
	c.JSON(http.StatusOK, mapUsersToResponse(clients))
}

// managedClient resolves :clientId and checks it is on the caller's roster.
func (h *CoachHandler) managedClient(c *gin.Context) (coachID, clientID primitive.ObjectID, ok bool) {
	if coachID, ok = currentUserID(c); !ok {
		return
	}
	if clientID, ok = pathID(c, "clientId"); !ok {
		return
	}
	if err := h.coachService.EnsureManaged(c.Request.Context(), coachID, clientID); err != nil {
		respondError(c, err, "Failed to verify client.")
		return coachID, clientID, false
	}
	return coachID, clientID, true
}

func (h *CoachHandler) ClientDailySummary(c *gin.Context) {
	_, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	h.foodLog.summary(c, clientID)
}

func (h *CoachHandler) ClientMilestones(c *gin.Context) {
	_, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	h.milestones.progress(c, clientID)
}

func (h *CoachHandler) CreateClientProgram(c *gin.Context) {
	coachID, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	h.programs.create(c, clientID, coachID)
}

func (h *CoachHandler) ListClientPrograms(c *gin.Context) {
	_, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	programs, err := h.programService.ListPrograms(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "Failed to retrieve programs.")
		return
	}
	c.JSON(http.StatusOK, programs)
}

func (h *CoachHandler) CreateClientPlan(c *gin.Context) {
	coachID, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	h.nutrition.createPlan(c, clientID, coachID)
}

func (h *CoachHandler) ClientWorkouts(c *gin.Context) {
	_, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.History(c.Request.Context(), clientID, 0)
	if err != nil {
		respondError(c, err, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *CoachHandler) ClientPhotos(c *gin.Context) {
	_, clientID, ok := h.managedClient(c)
	if !ok {
		return
	}
	photos, err := h.bodyStatService.ListPhotos(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "Failed to retrieve photos.")
		return
	}
	c.JSON(http.StatusOK, photos)
}
