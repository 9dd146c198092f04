package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuizService is the definition store for quizzes, questions and answers.
type QuizService interface {
	CreateQuiz(lessonID, ownerID uint, req dto.QuizCreateDTO) (*dto.QuizResponseDTO, error)
	UpdateQuiz(quizID, ownerID uint, req dto.QuizUpdateDTO) (*dto.QuizResponseDTO, error)
	DeleteQuiz(quizID, ownerID uint) error
	GetQuiz(quizID uint) (*dto.QuizResponseDTO, error)
	GetQuizStudentView(quizID uint) (*dto.QuizStudentViewDTO, error)
	CreateQuestion(quizID, ownerID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	ReorderQuestions(quizID, ownerID uint, req dto.ReorderQuestionsDTO) error
	DeleteQuestion(questionID, ownerID uint) error
	DeleteAnswer(answerID, ownerID uint) error
}

type quizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	lessonRepo   repository.LessonRepository
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	lessonRepo repository.LessonRepository,
) QuizService {
	return &quizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		lessonRepo:   lessonRepo,
	}
}

// validateQuizFields re-checks what the binding tags enforce, so callers that
// bypass the HTTP layer get the same bounds.
func validateQuizFields(title string, durationMinutes int) error {
	if l := len(title); l < 3 || l > 255 {
		return fmt.Errorf("quiz title must be 3 to 255 characters: %w", ErrInvalidInput)
	}
	if durationMinutes < 1 {
		return fmt.Errorf("quiz duration must be at least one minute: %w", ErrInvalidInput)
	}
	return nil
}

func (s *quizService) requireLessonOwner(lessonID, ownerID uint) error {
	actual, err := s.lessonRepo.FindOwnerID(lessonID)
	if err != nil {
		return fmt.Errorf("error resolving lesson owner: %w", err)
	}
	if actual != ownerID {
		return ErrForbidden
	}
	return nil
}

func (s *quizService) requireQuizOwner(quizID, ownerID uint) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}
	if err := s.requireLessonOwner(quiz.LessonID, ownerID); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) CreateQuiz(lessonID, ownerID uint, req dto.QuizCreateDTO) (*dto.QuizResponseDTO, error) {
	if err := validateQuizFields(req.Title, req.DurationMinutes); err != nil {
		return nil, err
	}
	if err := s.requireLessonOwner(lessonID, ownerID); err != nil {
		return nil, err
	}
	if _, err := s.lessonRepo.FindByID(lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %d: %w", lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching lesson %d: %w", lessonID, err)
	}

	quiz := model.Quiz{
		LessonID:        lessonID,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.quizRepo.Create(&quiz); err != nil {
		log.Error().Err(err).Uint("lessonID", lessonID).Msg("CreateQuiz: failed to create quiz")
		return nil, fmt.Errorf("database error creating quiz: %w", err)
	}

	var resp dto.QuizResponseDTO
	if err := copier.Copy(&resp, &quiz); err != nil {
		return nil, fmt.Errorf("error preparing quiz response: %w", err)
	}
	return &resp, nil
}

func (s *quizService) UpdateQuiz(quizID, ownerID uint, req dto.QuizUpdateDTO) (*dto.QuizResponseDTO, error) {
	if err := validateQuizFields(req.Title, req.DurationMinutes); err != nil {
		return nil, err
	}
	quiz, err := s.requireQuizOwner(quizID, ownerID)
	if err != nil {
		return nil, err
	}

	quiz.Title = req.Title
	quiz.DurationMinutes = req.DurationMinutes
	if err := s.quizRepo.Update(quiz); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("UpdateQuiz: failed to update quiz metadata")
		return nil, fmt.Errorf("database error updating quiz: %w", err)
	}

	// Replace-all: the submitted question list supersedes the stored one.
	if req.Questions != nil {
		questions := make([]model.Question, 0, len(req.Questions))
		for i, qDto := range req.Questions {
			q := model.Question{
				QuestionText: qDto.QuestionText,
				OrderInQuiz:  i,
			}
			for _, aDto := range qDto.Answers {
				q.Answers = append(q.Answers, model.Answer{
					AnswerText: aDto.AnswerText,
					IsCorrect:  aDto.IsCorrect,
				})
			}
			questions = append(questions, q)
		}
		if err := s.quizRepo.ReplaceQuestions(quizID, questions); err != nil {
			log.Error().Err(err).Uint("quizID", quizID).Msg("UpdateQuiz: failed to replace questions")
			return nil, fmt.Errorf("database error replacing questions: %w", err)
		}
	}

	return s.GetQuiz(quizID)
}

func (s *quizService) DeleteQuiz(quizID, ownerID uint) error {
	if _, err := s.requireQuizOwner(quizID, ownerID); err != nil {
		return err
	}
	if err := s.quizRepo.Delete(quizID); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("DeleteQuiz: failed to delete quiz")
		return fmt.Errorf("database error deleting quiz: %w", err)
	}
	return nil
}

func (s *quizService) GetQuiz(quizID uint) (*dto.QuizResponseDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
		}
		log.Error().Err(err).Uint("quizID", quizID).Msg("GetQuiz: failed to fetch quiz")
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}

	var resp dto.QuizResponseDTO
	if err := copier.Copy(&resp, quiz); err != nil {
		return nil, fmt.Errorf("error preparing quiz response: %w", err)
	}
	return &resp, nil
}

// GetQuizStudentView returns the quiz with answer correctness stripped.
func (s *quizService) GetQuizStudentView(quizID uint) (*dto.QuizStudentViewDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
		}
		log.Error().Err(err).Uint("quizID", quizID).Msg("GetQuizStudentView: failed to fetch quiz")
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}

	resp := dto.QuizStudentViewDTO{
		ID:              quiz.ID,
		LessonID:        quiz.LessonID,
		Title:           quiz.Title,
		DurationMinutes: quiz.DurationMinutes,
	}
	for _, q := range quiz.Questions {
		qDto := dto.QuestionOptionDTO{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OrderInQuiz:  q.OrderInQuiz,
		}
		for _, a := range q.Answers {
			qDto.Answers = append(qDto.Answers, dto.AnswerOptionDTO{
				ID:         a.ID,
				AnswerText: a.AnswerText,
			})
		}
		resp.Questions = append(resp.Questions, qDto)
	}
	return &resp, nil
}

// CreateQuestion inserts the question and its answers atomically; on a partial
// failure nothing is persisted.
func (s *quizService) CreateQuestion(quizID, ownerID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if _, err := s.requireQuizOwner(quizID, ownerID); err != nil {
		return nil, err
	}

	question := model.Question{
		QuizID:       quizID,
		QuestionText: req.QuestionText,
		OrderInQuiz:  req.OrderInQuiz,
	}
	for _, aDto := range req.Answers {
		question.Answers = append(question.Answers, model.Answer{
			AnswerText: aDto.AnswerText,
			IsCorrect:  aDto.IsCorrect,
		})
	}

	if err := s.questionRepo.CreateWithAnswers(&question); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("CreateQuestion: transactional insert failed")
		return nil, fmt.Errorf("database error creating question: %w", err)
	}

	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, &question); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	return &resp, nil
}

// ReorderQuestions rewrites each question's order index to its position in the
// submitted list. The caller's order is authoritative; there is no tie-break.
func (s *quizService) ReorderQuestions(quizID, ownerID uint, req dto.ReorderQuestionsDTO) error {
	if _, err := s.requireQuizOwner(quizID, ownerID); err != nil {
		return err
	}

	existing, err := s.questionRepo.FindByQuizID(quizID)
	if err != nil {
		return fmt.Errorf("error fetching questions for quiz %d: %w", quizID, err)
	}
	known := make(map[uint]bool, len(existing))
	for _, q := range existing {
		known[q.ID] = true
	}

	for pos, questionID := range req.QuestionIDs {
		if !known[questionID] {
			return fmt.Errorf("question %d does not belong to quiz %d: %w", questionID, quizID, ErrInvalidInput)
		}
		if err := s.questionRepo.UpdateOrder(questionID, pos); err != nil {
			log.Error().Err(err).Uint("questionID", questionID).Int("position", pos).Msg("ReorderQuestions: failed to update order index")
			return fmt.Errorf("database error reordering questions: %w", err)
		}
	}
	return nil
}

func (s *quizService) DeleteQuestion(questionID, ownerID uint) error {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
		}
		return fmt.Errorf("error fetching question %d: %w", questionID, err)
	}
	if _, err := s.requireQuizOwner(question.QuizID, ownerID); err != nil {
		return err
	}
	if err := s.questionRepo.Delete(questionID); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("DeleteQuestion: failed to delete question")
		return fmt.Errorf("database error deleting question: %w", err)
	}
	return nil
}

func (s *quizService) DeleteAnswer(answerID, ownerID uint) error {
	answer, err := s.questionRepo.FindAnswerByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer %d: %w", answerID, ErrNotFound)
		}
		return fmt.Errorf("error fetching answer %d: %w", answerID, err)
	}
	question, err := s.questionRepo.FindByID(answer.QuestionID)
	if err != nil {
		return fmt.Errorf("error fetching question %d: %w", answer.QuestionID, err)
	}
	if _, err := s.requireQuizOwner(question.QuizID, ownerID); err != nil {
		return err
	}
	if err := s.questionRepo.DeleteAnswer(answerID); err != nil {
		log.Error().Err(err).Uint("answerID", answerID).Msg("DeleteAnswer: failed to delete answer")
		return fmt.Errorf("database error deleting answer: %w", err)
	}
	return nil
}
