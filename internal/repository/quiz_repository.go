package repository

import (
	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(quiz *model.Quiz) error
	FindByID(id uint) (*model.Quiz, error)
	FindByIDWithQuestions(id uint) (*model.Quiz, error)
	FindByLessonID(lessonID uint) ([]model.Quiz, error)
	Update(quiz *model.Quiz) error
	ReplaceQuestions(quizID uint, questions []model.Question) error
	Delete(id uint) error
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	return r.db.Create(quiz).Error
}

func (r *quizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.db.First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindByIDWithQuestions loads the quiz with its questions ordered by their
// position. Answers are preloaded unordered.
func (r *quizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_in_quiz ASC")
		}).
		Preload("Questions.Answers").
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindByLessonID(lessonID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	if err := r.db.Where("lesson_id = ?", lessonID).Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepository) Update(quiz *model.Quiz) error {
	return r.db.Save(quiz).Error
}

// ReplaceQuestions swaps the quiz's entire question set in one transaction:
// every existing question (and its answers) is removed and the given list is
// inserted in its place.
func (r *quizRepository) ReplaceQuestions(quizID uint, questions []model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []model.Question
		if err := tx.Where("quiz_id = ?", quizID).Find(&existing).Error; err != nil {
			return err
		}
		for _, q := range existing {
			if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&model.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quizID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *quizRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var questions []model.Question
		if err := tx.Where("quiz_id = ?", id).Find(&questions).Error; err != nil {
			return err
		}
		for _, q := range questions {
			if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&model.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Quiz{}, id).Error
	})
}
