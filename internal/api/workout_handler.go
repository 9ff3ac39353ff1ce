package api

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type SetRequest struct {
	ExerciseID   *string  `json:"exerciseId"`
	ExerciseName string   `json:"exerciseName"`
	SetNumber    int      `json:"setNumber"`
	Weight       *float64 `json:"weight"`
	Reps         int      `json:"reps"`
}

type StartWorkoutRequest struct {
	Name      string     `json:"name" binding:"required"`
	ProgramID *string    `json:"programId"`
	StartedAt *time.Time `json:"startedAt"`
	Notes     string     `json:"notes"`
}

type AddSetsRequest struct {
	Sets []SetRequest `json:"sets" binding:"required,min=1"`
}

type CompleteWorkoutRequest struct {
	CompletedAt     *time.Time `json:"completedAt"`
	DurationMinutes *int       `json:"durationMinutes"`
}

type QuickLogRequest struct {
	Name            string       `json:"name" binding:"required"`
	ProgramID       *string      `json:"programId"`
	DurationMinutes int          `json:"durationMinutes"`
	CompletedAt     *time.Time   `json:"completedAt"`
	Notes           string       `json:"notes"`
	Sets            []SetRequest `json:"sets"`
}

// MilestoneResponse is null in a workout response when the check failed.
type MilestoneResponse struct {
	Unlocked      bool                  `json:"unlocked"`
	Type          *domain.MilestoneType `json:"type"`
	TotalWorkouts int64                 `json:"totalWorkouts"`
	TotalVolume   float64               `json:"totalVolume"`
}

// WorkoutResponse carries sets as null, not [], when they could not be loaded.
type WorkoutResponse struct {
	Workout   *domain.WorkoutLog `json:"workout"`
	Sets      []domain.SetLog    `json:"sets"`
	Milestone *MilestoneResponse `json:"milestone"`
}

func mapOutcome(out *service.WorkoutOutcome) WorkoutResponse {
	resp := WorkoutResponse{Workout: out.Workout, Sets: out.Sets}
	if m := out.Milestone; m != nil {
		resp.Milestone = &MilestoneResponse{
			Unlocked:      m.Unlocked,
			Type:          m.Milestone,
			TotalWorkouts: m.TotalWorkouts,
			TotalVolume:   m.TotalVolume,
		}
	}
	return resp
}

func (h *WorkoutHandler) mapSets(c *gin.Context, in []SetRequest) ([]service.SetInput, bool) {
	sets := make([]service.SetInput, len(in))
	for i, s := range in {
		exerciseID, ok := optionalID(c, "exerciseId", s.ExerciseID)
		if !ok {
			return nil, false
		}
		sets[i] = service.SetInput{
			ExerciseID:   exerciseID,
			ExerciseName: s.ExerciseName,
			SetNumber:    s.SetNumber,
			Weight:       s.Weight,
			Reps:         s.Reps,
		}
	}
	return sets, true
}

func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req StartWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	programID, ok := optionalID(c, "programId", req.ProgramID)
	if !ok {
		return
	}

	workout, err := h.workoutService.StartWorkout(c.Request.Context(), userID, service.StartWorkoutInput{
		Name:      req.Name,
		ProgramID: programID,
		StartedAt: req.StartedAt,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err, "Failed to start workout.")
		return
	}
	c.JSON(http.StatusCreated, workout)
}

func (h *WorkoutHandler) AddSets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	sets, ok := h.mapSets(c, req.Sets)
	if !ok {
		return
	}

	stored, err := h.workoutService.AddSets(c.Request.Context(), userID, workoutID, sets)
	if err != nil {
		respondError(c, err, "Failed to add sets.")
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// CompleteWorkout godoc
// @Summary Complete an in-progress workout
// @Description Marks the workout completed and runs the milestone check. The milestone field is null when the check failed; sets is null when they could not be read back. The workout is completed either way.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 409 {object} gin.H "Workout already completed"
// @Router /workout-logs/{id}/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CompleteWorkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	out, err := h.workoutService.CompleteWorkout(c.Request.Context(), userID, workoutID, service.CompleteWorkoutInput{
		CompletedAt:     req.CompletedAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondError(c, err, "Failed to complete workout.")
		return
	}
	c.JSON(http.StatusOK, mapOutcome(out))
}

// QuickLog godoc
// @Summary Log a finished workout with its sets in one call
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body QuickLogRequest true "Workout"
// @Success 201 {object} WorkoutResponse
// @Router /workout-logs/quick-log [post]
func (h *WorkoutHandler) QuickLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req QuickLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	programID, ok := optionalID(c, "programId", req.ProgramID)
	if !ok {
		return
	}
	sets, ok := h.mapSets(c, req.Sets)
	if !ok {
		return
	}

	out, err := h.workoutService.QuickLog(c.Request.Context(), userID, service.QuickLogInput{
		Name:            req.Name,
		ProgramID:       programID,
		DurationMinutes: req.DurationMinutes,
		CompletedAt:     req.CompletedAt,
		Notes:           req.Notes,
		Sets:            sets,
	})
	if err != nil {
		respondError(c, err, "Failed to log workout.")
		return
	}
	c.JSON(http.StatusCreated, mapOutcome(out))
}

func (h *WorkoutHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	workouts, err := h.workoutService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondError(c, err, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"workout": details.Workout, "sets": details.Sets})
}
