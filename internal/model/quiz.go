package model

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	LessonID        uint           `json:"lesson_id" gorm:"not null;index"`
	Title           string         `json:"title" gorm:"not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

type Question struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	QuizID       uint           `json:"quiz_id" gorm:"not null;index"`
	QuestionText string         `json:"question_text" gorm:"type:text;not null"`
	// Dense zero-based position within the quiz. Last writer wins on concurrent edits.
	OrderInQuiz int            `json:"order_in_quiz" gorm:"not null"`
	Answers     []Answer       `json:"answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Answer struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	AnswerText string         `json:"answer_text" gorm:"type:text;not null"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
