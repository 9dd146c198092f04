package teacher

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/internal/controller"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/middleware"
	"github.com/lshigami/Ocelots/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

// CreateQuiz godoc
// @Summary (Teacher) Create a quiz on a lesson
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Param lesson_id path int true "Lesson ID"
// @Param quiz body dto.QuizCreateDTO true "Quiz data"
// @Success 201 {object} dto.QuizResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/lessons/{lesson_id}/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "lesson_id")
	if !ok {
		return
	}
	var req dto.QuizCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.quizService.CreateQuiz(lessonID, middleware.UserID(ctx), req)
	if err != nil {
		log.Error().Err(err).Uint("lesson_id", lessonID).Msg("CreateQuiz: service error")
		controller.RespondError(ctx, err, "Failed to create quiz")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateQuiz godoc
// @Summary (Teacher) Update a quiz, replacing its questions
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param quiz body dto.QuizUpdateDTO true "Quiz data"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{quiz_id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.QuizUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.quizService.UpdateQuiz(quizID, middleware.UserID(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to update quiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetQuiz godoc
// @Summary (Teacher) Get a quiz with questions and correctness flags
// @Tags Teacher - Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{quiz_id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	resp, err := c.quizService.GetQuiz(quizID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to fetch quiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteQuiz godoc
// @Summary (Teacher) Delete a quiz and all of its questions
// @Tags Teacher - Quizzes
// @Param quiz_id path int true "Quiz ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{quiz_id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	if err := c.quizService.DeleteQuiz(quizID, middleware.UserID(ctx)); err != nil {
		controller.RespondError(ctx, err, "Failed to delete quiz")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateQuestion godoc
// @Summary (Teacher) Append a question with its answers to a quiz
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param question body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{quiz_id}/questions [post]
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.quizService.CreateQuestion(quizID, middleware.UserID(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to create question")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ReorderQuestions godoc
// @Summary (Teacher) Reorder the questions of a quiz
// @Tags Teacher - Quizzes
// @Accept json
// @Param quiz_id path int true "Quiz ID"
// @Param order body dto.ReorderQuestionsDTO true "Question IDs in the desired order"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{quiz_id}/questions/order [put]
func (c *QuizController) ReorderQuestions(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.ReorderQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.quizService.ReorderQuestions(quizID, middleware.UserID(ctx), req); err != nil {
		controller.RespondError(ctx, err, "Failed to reorder questions")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DeleteQuestion godoc
// @Summary (Teacher) Delete a question and its answers
// @Tags Teacher - Quizzes
// @Param question_id path int true "Question ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/questions/{question_id} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.quizService.DeleteQuestion(questionID, middleware.UserID(ctx)); err != nil {
		controller.RespondError(ctx, err, "Failed to delete question")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DeleteAnswer godoc
// @Summary (Teacher) Delete a single answer option
// @Tags Teacher - Quizzes
// @Param answer_id path int true "Answer ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/answers/{answer_id} [delete]
func (c *QuizController) DeleteAnswer(ctx *gin.Context) {
	answerID, ok := pathID(ctx, "answer_id")
	if !ok {
		return
	}
	if err := c.quizService.DeleteAnswer(answerID, middleware.UserID(ctx)); err != nil {
		controller.RespondError(ctx, err, "Failed to delete answer")
		return
	}
	ctx.Status(http.StatusNoContent)
}
