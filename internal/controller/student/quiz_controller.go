package student

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/internal/controller"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/middleware"
	"github.com/lshigami/Ocelots/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService       service.QuizService
	completionService service.CompletionService
}

func NewQuizController(quizService service.QuizService, completionService service.CompletionService) *QuizController {
	return &QuizController{
		quizService:       quizService,
		completionService: completionService,
	}
}

func queryEnrollmentID(ctx *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Query("enrollment_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "enrollment_id query parameter is required"})
		return 0, false
	}
	return uint(v), true
}

// GetQuiz godoc
// @Summary (Student) Get a quiz without correctness flags
// @Tags Student - Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizStudentViewDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/quizzes/{quiz_id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	resp, err := c.quizService.GetQuizStudentView(quizID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to fetch quiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Submit godoc
// @Summary (Student) Submit quiz answers for grading
// @Description Grades the submission and records a completion. Resubmitting
// @Description returns the original result with already_completed set.
// @Tags Student - Quizzes
// @Accept json
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param submission body dto.QuizSubmissionDTO true "Chosen answers"
// @Success 200 {object} dto.CompletionResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /student/quizzes/{quiz_id}/complete [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.QuizSubmissionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.completionService.Submit(quizID, req.EnrollmentID, middleware.UserID(ctx), req.Answers)
	if err != nil {
		log.Error().Err(err).Uint("quiz_id", quizID).Msg("Submit: service error")
		controller.RespondError(ctx, err, "Failed to submit quiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Completed godoc
// @Summary (Student) Check whether a quiz is already completed
// @Tags Student - Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param enrollment_id query int true "Enrollment ID"
// @Success 200 {object} dto.CompletedResponseDTO
// @Router /student/quizzes/{quiz_id}/completed [get]
func (c *QuizController) Completed(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	enrollmentID, ok := queryEnrollmentID(ctx)
	if !ok {
		return
	}
	completed, err := c.completionService.IsCompleted(quizID, enrollmentID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to check completion")
		return
	}
	ctx.JSON(http.StatusOK, dto.CompletedResponseDTO{Completed: completed})
}

// Results godoc
// @Summary (Student) Get the graded results of a completed quiz
// @Tags Student - Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param enrollment_id query int true "Enrollment ID"
// @Success 200 {object} dto.CompletionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/quizzes/{quiz_id}/results [get]
func (c *QuizController) Results(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	enrollmentID, ok := queryEnrollmentID(ctx)
	if !ok {
		return
	}
	resp, err := c.completionService.GetResults(quizID, enrollmentID, middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to fetch results")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
