package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CompletionService is the completion ledger: it accepts a finished attempt,
// derives the score and makes the result queryable thereafter. The write is
// guarded by the (quiz, enrollment) uniqueness constraint; the query side is
// idempotent.
type CompletionService interface {
	Submit(quizID, enrollmentID, studentID uint, answers []dto.SubmittedAnswerDTO) (*dto.CompletionResponseDTO, error)
	IsCompleted(quizID, enrollmentID uint) (bool, error)
	GetResults(quizID, enrollmentID, studentID uint) (*dto.CompletionResponseDTO, error)
}

type completionService struct {
	quizRepo       repository.QuizRepository
	enrollmentRepo repository.EnrollmentRepository
	completionRepo repository.CompletionRepository
}

func NewCompletionService(
	quizRepo repository.QuizRepository,
	enrollmentRepo repository.EnrollmentRepository,
	completionRepo repository.CompletionRepository,
) CompletionService {
	return &completionService{
		quizRepo:       quizRepo,
		enrollmentRepo: enrollmentRepo,
		completionRepo: completionRepo,
	}
}

func (s *completionService) requireEnrollment(enrollmentID, studentID uint) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("error fetching enrollment %d: %w", enrollmentID, err)
	}
	if studentID != 0 && enrollment.StudentID != studentID {
		return nil, ErrNotEnrolled
	}
	return enrollment, nil
}

// Submit scores the attempt against the stored answer key and persists the
// completion record. Unanswered questions count as incorrect. A submission for
// an already-completed (quiz, enrollment) pair returns the existing record
// instead of an error.
func (s *completionService) Submit(quizID, enrollmentID, studentID uint, answers []dto.SubmittedAnswerDTO) (*dto.CompletionResponseDTO, error) {
	if _, err := s.requireEnrollment(enrollmentID, studentID); err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
		}
		log.Error().Err(err).Uint("quizID", quizID).Msg("Submit: failed to fetch quiz")
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz %d has no questions: %w", quizID, ErrInvalidInput)
	}

	if existing, err := s.completionRepo.FindByQuizAndEnrollment(quizID, enrollmentID); err == nil {
		resp := s.buildResult(quiz, existing)
		resp.AlreadyCompleted = true
		return resp, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Msg("Submit: completion lookup failed")
		return nil, fmt.Errorf("error checking completion: %w", err)
	}

	submitted := make(map[uint]uint, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = a.AnswerID
	}

	correctCount := 0
	completion := model.QuizCompletion{
		QuizID:       quizID,
		EnrollmentID: enrollmentID,
	}
	for _, q := range quiz.Questions {
		answerID, answered := submitted[q.ID]
		if !answered {
			continue
		}
		completion.Answers = append(completion.Answers, model.CompletionAnswer{
			QuestionID: q.ID,
			AnswerID:   answerID,
		})
		if correct := correctAnswerOf(q); correct != nil && correct.ID == answerID {
			correctCount++
		}
	}
	completion.Score = float64(correctCount) / float64(len(quiz.Questions))

	if err := s.completionRepo.Create(&completion); err != nil {
		// A concurrent submission may have won the race on the unique index;
		// answer it the same way as a sequential duplicate.
		if existing, findErr := s.completionRepo.FindByQuizAndEnrollment(quizID, enrollmentID); findErr == nil {
			log.Warn().Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Msg("Submit: lost duplicate race, returning existing completion")
			resp := s.buildResult(quiz, existing)
			resp.AlreadyCompleted = true
			return resp, nil
		}
		log.Error().Err(err).Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Msg("Submit: failed to persist completion")
		return nil, fmt.Errorf("database error recording completion: %w", err)
	}

	log.Info().Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Float64("score", completion.Score).Msg("Quiz completion recorded")
	return s.buildResult(quiz, &completion), nil
}

func (s *completionService) IsCompleted(quizID, enrollmentID uint) (bool, error) {
	completed, err := s.completionRepo.Exists(quizID, enrollmentID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Msg("IsCompleted: lookup failed")
		return false, fmt.Errorf("error checking completion: %w", err)
	}
	return completed, nil
}

// GetResults returns the graded breakdown. The correct answers are revealed
// here, so the enrollment must belong to the caller.
func (s *completionService) GetResults(quizID, enrollmentID, studentID uint) (*dto.CompletionResponseDTO, error) {
	if _, err := s.requireEnrollment(enrollmentID, studentID); err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}

	completion, err := s.completionRepo.FindByQuizAndEnrollment(quizID, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no completion for quiz %d and enrollment %d: %w", quizID, enrollmentID, ErrNotFound)
		}
		log.Error().Err(err).Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Msg("GetResults: completion lookup failed")
		return nil, fmt.Errorf("error fetching completion: %w", err)
	}

	return s.buildResult(quiz, completion), nil
}

// buildResult renders the per-question breakdown for the results view.
func (s *completionService) buildResult(quiz *model.Quiz, completion *model.QuizCompletion) *dto.CompletionResponseDTO {
	submitted := make(map[uint]uint, len(completion.Answers))
	for _, a := range completion.Answers {
		submitted[a.QuestionID] = a.AnswerID
	}

	resp := &dto.CompletionResponseDTO{
		QuizID:       quiz.ID,
		QuizTitle:    quiz.Title,
		EnrollmentID: completion.EnrollmentID,
		Score:        completion.Score,
		SubmittedAt:  completion.SubmittedAt,
	}

	for _, q := range quiz.Questions {
		result := dto.QuestionResultDTO{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
		}
		correct := correctAnswerOf(q)
		if correct != nil {
			result.CorrectAnswer = correct.AnswerText
		}
		if answerID, answered := submitted[q.ID]; answered {
			for _, a := range q.Answers {
				if a.ID == answerID {
					text := a.AnswerText
					result.SubmittedAnswer = &text
					break
				}
			}
			result.Correct = correct != nil && correct.ID == answerID
		}
		resp.Questions = append(resp.Questions, result)
	}
	return resp
}

// correctAnswerOf returns the first answer flagged correct. The schema does
// not enforce exactly one correct answer per question.
func correctAnswerOf(q model.Question) *model.Answer {
	for i := range q.Answers {
		if q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	return nil
}
