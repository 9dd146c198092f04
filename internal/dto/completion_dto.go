package dto

import "time"

type SubmittedAnswerDTO struct {
	QuestionID uint `json:"question_id" binding:"required"`
	AnswerID   uint `json:"answer_id" binding:"required"`
}

type QuizSubmissionDTO struct {
	EnrollmentID uint                 `json:"enrollment_id" binding:"required"`
	Answers      []SubmittedAnswerDTO `json:"answers" binding:"dive"`
}

// QuestionResultDTO is one row of the per-question breakdown on the results
// view. SubmittedAnswer is nil when the question went unanswered; it still
// counts as incorrect.
type QuestionResultDTO struct {
	QuestionID      uint    `json:"question_id"`
	QuestionText    string  `json:"question_text"`
	SubmittedAnswer *string `json:"submitted_answer,omitempty"`
	CorrectAnswer   string  `json:"correct_answer"`
	Correct         bool    `json:"correct"`
}

type CompletionResponseDTO struct {
	QuizID           uint                `json:"quiz_id"`
	QuizTitle        string              `json:"quiz_title"`
	EnrollmentID     uint                `json:"enrollment_id"`
	Score            float64             `json:"score"` // fraction correct, 0..1
	AlreadyCompleted bool                `json:"already_completed,omitempty"`
	SubmittedAt      time.Time           `json:"submitted_at"`
	Questions        []QuestionResultDTO `json:"questions,omitempty"`
}

type CompletedResponseDTO struct {
	Completed bool `json:"completed"`
}
