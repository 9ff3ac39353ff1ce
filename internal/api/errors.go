package api

import (
	"baisics/coach-api/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceErrorStatus maps service sentinels to HTTP statuses. Errors not
// listed are internal.
var serviceErrorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrInvalidDate, http.StatusBadRequest},
	{service.ErrPhaseWithoutProgram, http.StatusBadRequest},
	{service.ErrInvalidPlanWindow, http.StatusBadRequest},
	{service.ErrInvalidPhase, http.StatusBadRequest},
	{service.ErrInvalidPhotoType, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},

	{service.ErrProgramAccessDenied, http.StatusForbidden},
	{service.ErrWorkoutAccessDenied, http.StatusForbidden},
	{service.ErrClientNotManaged, http.StatusForbidden},
	{service.ErrClientNotRole, http.StatusForbidden},
	{service.ErrPhotoKeyNotOwned, http.StatusForbidden},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrClientNotFound, http.StatusNotFound},
	{service.ErrProgramNotFound, http.StatusNotFound},
	{service.ErrWorkoutNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrFoodEntryNotFound, http.StatusNotFound},
	{service.ErrBodyStatNotFound, http.StatusNotFound},

	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrClientAlreadyAssigned, http.StatusConflict},
	{service.ErrWorkoutAlreadyCompleted, http.StatusConflict},
	{service.ErrPhotoAlreadyConfirmed, http.StatusConflict},

	{service.ErrPhotoStorageUnavailable, http.StatusServiceUnavailable},
}

// respondError writes the status mapped from err. Unmapped errors are
// attached to the context for the request logger and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			abortWithError(c, m.status, err.Error())
			return
		}
	}
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, fallback)
}
