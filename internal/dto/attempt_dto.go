package dto

type AttemptStartDTO struct {
	QuizID       uint `json:"quiz_id" binding:"required"`
	EnrollmentID uint `json:"enrollment_id" binding:"required"`
}

type AttemptAnswerDTO struct {
	QuestionID uint `json:"question_id" binding:"required"`
	AnswerID   uint `json:"answer_id" binding:"required"`
}

type AttemptStateDTO struct {
	State        string        `json:"state"`
	QuizID       uint          `json:"quiz_id,omitempty"`
	EnrollmentID uint          `json:"enrollment_id,omitempty"`
	EndTime      int64         `json:"end_time,omitempty"` // epoch ms
	RemainingSec int           `json:"remaining_sec"`
	Selected     map[uint]uint `json:"selected,omitempty"` // question id -> answer id
}
