package api

import (
	"baisics/coach-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

type CreateProgramRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PhaseCount  int    `json:"phaseCount" binding:"omitempty,min=1"`
	Activate    bool   `json:"activate"`
}

type SetPhaseRequest struct {
	Phase int `json:"phase" binding:"required,min=1"`
}

func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.create(c, userID, userID)
}

// create is shared with the coach routes, where userID is the client.
func (h *ProgramHandler) create(c *gin.Context, userID, createdBy primitive.ObjectID) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), userID, createdBy, service.CreateProgramInput{
		Name:        req.Name,
		Description: req.Description,
		PhaseCount:  req.PhaseCount,
		Activate:    req.Activate,
	})
	if err != nil {
		respondError(c, err, "Failed to create program.")
		return
	}
	c.JSON(http.StatusCreated, program)
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programs, err := h.programService.ListPrograms(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve programs.")
		return
	}
	c.JSON(http.StatusOK, programs)
}

// ActivateProgram makes the program the caller's only active one.
func (h *ProgramHandler) ActivateProgram(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "id")
	if !ok {
		return
	}
	program, err := h.programService.ActivateProgram(c.Request.Context(), userID, programID)
	if err != nil {
		respondError(c, err, "Failed to activate program.")
		return
	}
	c.JSON(http.StatusOK, program)
}

func (h *ProgramHandler) SetPhase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req SetPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	program, err := h.programService.SetPhase(c.Request.Context(), userID, programID, req.Phase)
	if err != nil {
		respondError(c, err, "Failed to update program phase.")
		return
	}
	c.JSON(http.StatusOK, program)
}
