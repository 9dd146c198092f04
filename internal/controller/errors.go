package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/internal/attempt"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/service"
)

// RespondError maps the service error taxonomy onto HTTP statuses. Not
// enrolled gets its own status so clients can route to the enroll flow
// instead of a generic error screen.
func RespondError(ctx *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotEnrolled):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, attempt.ErrNoAttempt),
		errors.Is(err, attempt.ErrNotRunning),
		errors.Is(err, attempt.ErrNothingChosen):
		status = http.StatusConflict
	case errors.Is(err, attempt.ErrSubmitting):
		status = http.StatusTooManyRequests
	}
	ctx.JSON(status, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
}
