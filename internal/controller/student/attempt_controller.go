package student

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/internal/controller"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/middleware"
	"github.com/lshigami/Ocelots/internal/service"
	"github.com/rs/zerolog/log"
)

// AttemptController exposes the timed-attempt session over HTTP. The
// countdown itself streams over the websocket endpoint; these routes
// drive the session state.
type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// Start godoc
// @Summary (Student) Start or resume a timed quiz attempt
// @Description Resumes an interrupted attempt on the same quiz. Starting a
// @Description different quiz while one is pending auto-submits the old one.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param attempt body dto.AttemptStartDTO true "Quiz and enrollment"
// @Success 200 {object} dto.AttemptStateDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /student/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	var req dto.AttemptStartDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.attemptService.Start(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		log.Error().Err(err).Uint("quiz_id", req.QuizID).Msg("Start attempt: service error")
		controller.RespondError(ctx, err, "Failed to start attempt")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Answer godoc
// @Summary (Student) Record an answer selection in the running attempt
// @Tags Student - Attempts
// @Accept json
// @Param answer body dto.AttemptAnswerDTO true "Chosen answer"
// @Success 204
// @Failure 409 {object} dto.ErrorResponse
// @Router /student/attempts/answer [put]
func (c *AttemptController) Answer(ctx *gin.Context) {
	var req dto.AttemptAnswerDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.attemptService.SelectAnswer(ctx.Request.Context(), middleware.UserID(ctx), req); err != nil {
		controller.RespondError(ctx, err, "Failed to record answer")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Next godoc
// @Summary (Student) Advance to the next question
// @Tags Student - Attempts
// @Success 204
// @Failure 409 {object} dto.ErrorResponse
// @Router /student/attempts/next [post]
func (c *AttemptController) Next(ctx *gin.Context) {
	if err := c.attemptService.Next(middleware.UserID(ctx)); err != nil {
		controller.RespondError(ctx, err, "Failed to advance")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Prev godoc
// @Summary (Student) Go back to the previous question
// @Tags Student - Attempts
// @Success 204
// @Failure 409 {object} dto.ErrorResponse
// @Router /student/attempts/prev [post]
func (c *AttemptController) Prev(ctx *gin.Context) {
	if err := c.attemptService.Prev(middleware.UserID(ctx)); err != nil {
		controller.RespondError(ctx, err, "Failed to go back")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Submit godoc
// @Summary (Student) Submit the running attempt for grading
// @Description Requires a selection on the current question. Returns 429 while
// @Description a previous submission is still in flight.
// @Tags Student - Attempts
// @Produce json
// @Success 200 {object} dto.AttemptStateDTO
// @Failure 409 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /student/attempts/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	resp, err := c.attemptService.Submit(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to submit attempt")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary (Student) Get the current attempt state
// @Tags Student - Attempts
// @Produce json
// @Success 200 {object} dto.AttemptStateDTO
// @Router /student/attempts/status [get]
func (c *AttemptController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.attemptService.Status(middleware.UserID(ctx)))
}

// Detach godoc
// @Summary (Student) Detach from the attempt without submitting
// @Description Stops countdown delivery; the attempt keeps running and can be
// @Description resumed with another start call.
// @Tags Student - Attempts
// @Success 204
// @Router /student/attempts/detach [post]
func (c *AttemptController) Detach(ctx *gin.Context) {
	c.attemptService.Detach(middleware.UserID(ctx))
	ctx.Status(http.StatusNoContent)
}
