package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/Ocelots/internal/attempt"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService exposes the timed-attempt controller to the API layer. The
// session key is derived from the student, giving at most one live timer per
// student session.
type AttemptService interface {
	Start(ctx context.Context, studentID uint, req dto.AttemptStartDTO) (*dto.AttemptStateDTO, error)
	SelectAnswer(ctx context.Context, studentID uint, req dto.AttemptAnswerDTO) error
	Submit(ctx context.Context, studentID uint) (*dto.AttemptStateDTO, error)
	Next(studentID uint) error
	Prev(studentID uint) error
	Status(studentID uint) *dto.AttemptStateDTO
	Detach(studentID uint)
}

type attemptService struct {
	controller     *attempt.Controller
	quizRepo       repository.QuizRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewAttemptService(
	controller *attempt.Controller,
	quizRepo repository.QuizRepository,
	enrollmentRepo repository.EnrollmentRepository,
) AttemptService {
	return &attemptService{
		controller:     controller,
		quizRepo:       quizRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func sessionKey(studentID uint) string {
	return fmt.Sprintf("student-%d", studentID)
}

func (s *attemptService) Start(ctx context.Context, studentID uint, req dto.AttemptStartDTO) (*dto.AttemptStateDTO, error) {
	enrollment, err := s.enrollmentRepo.FindByID(req.EnrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		log.Error().Err(err).Uint("enrollmentID", req.EnrollmentID).Msg("Start: enrollment lookup failed")
		return nil, fmt.Errorf("error fetching enrollment: %w", err)
	}
	if enrollment.StudentID != studentID {
		return nil, ErrNotEnrolled
	}

	quiz, err := s.quizRepo.FindByIDWithQuestions(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", req.QuizID, ErrNotFound)
		}
		log.Error().Err(err).Uint("quizID", req.QuizID).Msg("Start: quiz lookup failed")
		return nil, fmt.Errorf("error fetching quiz: %w", err)
	}

	questionIDs := make([]uint, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questionIDs = append(questionIDs, q.ID)
	}

	status, err := s.controller.Start(
		ctx,
		sessionKey(studentID),
		req.QuizID,
		req.EnrollmentID,
		time.Duration(quiz.DurationMinutes)*time.Minute,
		questionIDs,
	)
	if err != nil {
		return nil, err
	}
	return toAttemptDTO(status), nil
}

func (s *attemptService) SelectAnswer(ctx context.Context, studentID uint, req dto.AttemptAnswerDTO) error {
	return s.controller.SelectAnswer(ctx, sessionKey(studentID), req.QuestionID, req.AnswerID)
}

func (s *attemptService) Submit(ctx context.Context, studentID uint) (*dto.AttemptStateDTO, error) {
	status, err := s.controller.Submit(ctx, sessionKey(studentID))
	if err != nil {
		return nil, err
	}
	return toAttemptDTO(status), nil
}

func (s *attemptService) Next(studentID uint) error { return s.controller.Next(sessionKey(studentID)) }
func (s *attemptService) Prev(studentID uint) error { return s.controller.Prev(sessionKey(studentID)) }

func (s *attemptService) Status(studentID uint) *dto.AttemptStateDTO {
	return toAttemptDTO(s.controller.Status(sessionKey(studentID)))
}

func (s *attemptService) Detach(studentID uint) {
	s.controller.Detach(sessionKey(studentID))
}

func toAttemptDTO(status *attempt.Status) *dto.AttemptStateDTO {
	return &dto.AttemptStateDTO{
		State:        string(status.State),
		QuizID:       status.QuizID,
		EnrollmentID: status.EnrollmentID,
		EndTime:      status.EndTime,
		RemainingSec: status.RemainingSec,
		Selected:     status.Selected,
	}
}

// completionLedger adapts CompletionService to the attempt controller's
// submission interface, converting the answer buffer into submission pairs.
type completionLedger struct {
	completions CompletionService
}

func NewAttemptLedger(completions CompletionService) attempt.Ledger {
	return &completionLedger{completions: completions}
}

func (l *completionLedger) Submit(_ context.Context, quizID, enrollmentID uint, answers []attempt.AnswerPair) error {
	submitted := make([]dto.SubmittedAnswerDTO, 0, len(answers))
	for _, a := range answers {
		submitted = append(submitted, dto.SubmittedAnswerDTO{QuestionID: a.QuestionID, AnswerID: a.AnswerID})
	}
	_, err := l.completions.Submit(quizID, enrollmentID, 0, submitted)
	return err
}

func (l *completionLedger) IsCompleted(_ context.Context, quizID, enrollmentID uint) (bool, error) {
	return l.completions.IsCompleted(quizID, enrollmentID)
}
