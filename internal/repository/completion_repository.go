package repository

import (
	"errors"

	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type CompletionRepository interface {
	Create(completion *model.QuizCompletion) error
	FindByQuizAndEnrollment(quizID, enrollmentID uint) (*model.QuizCompletion, error)
	Exists(quizID, enrollmentID uint) (bool, error)
}

type completionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &completionRepository{db: db}
}

// Create persists the completion record and its answers in one transaction.
// The unique index on (quiz_id, enrollment_id) rejects a second record for
// the same pair.
func (r *completionRepository) Create(completion *model.QuizCompletion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		answers := completion.Answers
		completion.Answers = nil
		if err := tx.Create(completion).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].QuizCompletionID = completion.ID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		completion.Answers = answers
		return nil
	})
}

func (r *completionRepository) FindByQuizAndEnrollment(quizID, enrollmentID uint) (*model.QuizCompletion, error) {
	var completion model.QuizCompletion
	err := r.db.Where("quiz_id = ? AND enrollment_id = ?", quizID, enrollmentID).
		Preload("Answers").
		First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

func (r *completionRepository) Exists(quizID, enrollmentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.QuizCompletion{}).
		Where("quiz_id = ? AND enrollment_id = ?", quizID, enrollmentID).
		Count(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return count > 0, nil
}
