package dto

import "time"

type AnswerCreateDTO struct {
	AnswerText string `json:"answer_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

type QuestionCreateDTO struct {
	QuestionText string            `json:"question_text" binding:"required"`
	OrderInQuiz  int               `json:"order_in_quiz" binding:"min=0"`
	Answers      []AnswerCreateDTO `json:"answers" binding:"required,min=2,dive"`
}

type QuizCreateDTO struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
}

// QuizUpdateDTO carries replace-all semantics: the question list, when present,
// replaces every existing question of the quiz.
type QuizUpdateDTO struct {
	Title           string              `json:"title" binding:"required,min=3,max=255"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,min=1"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

type ReorderQuestionsDTO struct {
	QuestionIDs []uint `json:"question_ids" binding:"required,min=1"`
}

// AnswerResponseDTO is the teacher-facing answer view, correctness included.
type AnswerResponseDTO struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question_id"`
	AnswerText string `json:"answer_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// AnswerOptionDTO is the student-facing answer view; the correctness flag is
// never serialized to a student taking the quiz.
type AnswerOptionDTO struct {
	ID         uint   `json:"id"`
	AnswerText string `json:"answer_text"`
}

type QuestionResponseDTO struct {
	ID           uint                `json:"id"`
	QuizID       uint                `json:"quiz_id"`
	QuestionText string              `json:"question_text"`
	OrderInQuiz  int                 `json:"order_in_quiz"`
	Answers      []AnswerResponseDTO `json:"answers,omitempty"`
}

type QuestionOptionDTO struct {
	ID           uint              `json:"id"`
	QuestionText string            `json:"question_text"`
	OrderInQuiz  int               `json:"order_in_quiz"`
	Answers      []AnswerOptionDTO `json:"answers,omitempty"`
}

type QuizResponseDTO struct {
	ID              uint                  `json:"id"`
	LessonID        uint                  `json:"lesson_id"`
	Title           string                `json:"title"`
	DurationMinutes int                   `json:"duration_minutes"`
	Questions       []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

type QuizStudentViewDTO struct {
	ID              uint                `json:"id"`
	LessonID        uint                `json:"lesson_id"`
	Title           string              `json:"title"`
	DurationMinutes int                 `json:"duration_minutes"`
	Questions       []QuestionOptionDTO `json:"questions,omitempty"`
}
