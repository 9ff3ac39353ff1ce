package api

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscleGroup" binding:"omitempty"` // e.g., "Chest", "Legs"
	Equipment   string `json:"equipment" binding:"omitempty"`   // e.g., "Barbell", "Bodyweight"
	Difficulty  string `json:"difficulty" binding:"omitempty"`  // e.g., "Novice", "Medium", "Advanced"
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	CoachID     string    `json:"coachId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	Equipment   string    `json:"equipment,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ExerciseMatchResponse struct {
	Exercise ExerciseResponse `json:"exercise"`
	Score    float64          `json:"score"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		CoachID:     ex.CoachID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		MuscleGroup: ex.MuscleGroup,
		Equipment:   ex.Equipment,
		Difficulty:  ex.Difficulty,
		VideoURL:    ex.VideoURL,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Adds an exercise to the authenticated coach's library.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), coachID, service.CreateExerciseInput{
		Name:        req.Name,
		Description: req.Description,
		MuscleGroup: req.MuscleGroup,
		Equipment:   req.Equipment,
		Difficulty:  req.Difficulty,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		respondError(c, err, "Failed to create exercise.")
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetExercises returns the caller's own library for coaches and the full
// library for clients.
func (h *ExerciseHandler) GetExercises(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	role, _ := getUserRoleFromContext(c)

	var (
		exercises []domain.Exercise
		err       error
	)
	if role == domain.RoleCoach && c.Query("scope") != "all" {
		exercises, err = h.exerciseService.GetExercisesByCoach(c.Request.Context(), userID)
	} else {
		exercises, err = h.exerciseService.GetAllExercises(c.Request.Context())
	}
	if err != nil {
		respondError(c, err, "Failed to retrieve exercises.")
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// MatchExercises godoc
// @Summary Rank library exercises by name similarity
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param q query string true "Free-text exercise name"
// @Param limit query int false "Maximum results (default 5)"
// @Success 200 {array} ExerciseMatchResponse
// @Router /exercises/match [get]
func (h *ExerciseHandler) MatchExercises(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	matches, err := h.exerciseService.MatchExercises(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err, "Failed to match exercises.")
		return
	}

	out := make([]ExerciseMatchResponse, len(matches))
	for i := range matches {
		out[i] = ExerciseMatchResponse{Exercise: MapExerciseToResponse(&matches[i].Exercise), Score: matches[i].Score}
	}
	c.JSON(http.StatusOK, out)
}
