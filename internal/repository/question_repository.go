package repository

import (
	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	CreateWithAnswers(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByIDWithAnswers(id uint) (*model.Question, error)
	FindByQuizID(quizID uint) ([]model.Question, error)
	Update(question *model.Question) error
	UpdateOrder(questionID uint, orderInQuiz int) error
	Delete(id uint) error
	FindAnswerByID(id uint) (*model.Answer, error)
	DeleteAnswer(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// CreateWithAnswers inserts the question and all its answers in a single
// transaction. A failure on any row leaves nothing persisted.
func (r *questionRepository) CreateWithAnswers(question *model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		answers := question.Answers
		question.Answers = nil
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].QuestionID = question.ID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		question.Answers = answers
		return nil
	})
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByIDWithAnswers(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.Preload("Answers").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByQuizID(quizID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("quiz_id = ?", quizID).
		Order("order_in_quiz ASC").
		Preload("Answers").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) UpdateOrder(questionID uint, orderInQuiz int) error {
	return r.db.Model(&model.Question{}).Where("id = ?", questionID).
		Update("order_in_quiz", orderInQuiz).Error
}

// Delete removes the question and its answers for good.
func (r *questionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("question_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Question{}, id).Error
	})
}

func (r *questionRepository) FindAnswerByID(id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *questionRepository) DeleteAnswer(id uint) error {
	return r.db.Unscoped().Delete(&model.Answer{}, id).Error
}
