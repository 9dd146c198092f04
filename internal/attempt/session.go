package attempt

import "time"

// State of a single quiz attempt within a student session.
type State string

const (
	StateIdle       State = "idle"
	StateRunning    State = "running"
	StateExpiring   State = "expiring"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Session is the attempt timer state for one student session: the quiz being
// attempted, the absolute end timestamp fixed at start, and the buffer of
// locally selected answers not yet submitted. It is persisted wholesale on
// every answer change and cleared on completion or switch.
type Session struct {
	QuizID       uint          `json:"quiz_id"`
	EnrollmentID uint          `json:"enrollment_id"`
	EndTime      int64         `json:"end_time"` // epoch ms
	Selected     map[uint]uint `json:"selected"` // question id -> answer id
}

// Remaining is computed from the absolute end timestamp, never from a relative
// counter, so a reconstructed session keeps its original expiry.
func (s *Session) Remaining(now time.Time) time.Duration {
	return time.UnixMilli(s.EndTime).Sub(now)
}

// AnswerPair is one (question, answer) element of a submission.
type AnswerPair struct {
	QuestionID uint `json:"question_id"`
	AnswerID   uint `json:"answer_id"`
}

// Pairs converts the answer buffer into submission form.
func (s *Session) Pairs() []AnswerPair {
	pairs := make([]AnswerPair, 0, len(s.Selected))
	for questionID, answerID := range s.Selected {
		pairs = append(pairs, AnswerPair{QuestionID: questionID, AnswerID: answerID})
	}
	return pairs
}

// EventType enumerates the attempt events streamed to the client.
type EventType string

const (
	EventTick      EventType = "tick"
	EventExpired   EventType = "expired"
	EventSubmitted EventType = "submitted"
	EventSwitched  EventType = "switched"
	EventError     EventType = "error"
)

type Event struct {
	Type         EventType `json:"type"`
	QuizID       uint      `json:"quiz_id,omitempty"`
	RemainingSec int       `json:"remaining_sec,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Notifier delivers attempt events to whoever is watching the session. A nil
// notifier is valid; events are dropped. Publish must not block: it is called
// from timer and submission paths, so implementations buffer or drop rather
// than wait on slow consumers.
type Notifier interface {
	Publish(sessionKey string, event Event)
}
