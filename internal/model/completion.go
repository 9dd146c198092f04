package model

import (
	"time"

	"gorm.io/gorm"
)

// QuizCompletion is the persisted outcome of a finished attempt. One row per
// (quiz, enrollment) pair, enforced by a unique composite index; the record is
// never updated after creation.
type QuizCompletion struct {
	ID           uint               `gorm:"primarykey" json:"id"`
	QuizID       uint               `json:"quiz_id" gorm:"not null;index:idx_completion_quiz_enrollment,unique"`
	EnrollmentID uint               `json:"enrollment_id" gorm:"not null;index:idx_completion_quiz_enrollment,unique"`
	Quiz         Quiz               `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Enrollment   Enrollment         `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	Score        float64            `json:"score" gorm:"not null"` // fraction correct, 0..1
	Answers      []CompletionAnswer `json:"answers,omitempty" gorm:"foreignKey:QuizCompletionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	SubmittedAt  time.Time          `json:"submitted_at" gorm:"autoCreateTime"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	DeletedAt    gorm.DeletedAt     `gorm:"index" json:"-"`
}

// CompletionAnswer records one submitted (question, answer) pair.
type CompletionAnswer struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	QuizCompletionID uint           `json:"quiz_completion_id" gorm:"not null;index"`
	QuestionID       uint           `json:"question_id" gorm:"not null;index"`
	AnswerID         uint           `json:"answer_id" gorm:"not null"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
