package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Ledger is the submission interface of the completion ledger, as seen from
// the attempt controller.
type Ledger interface {
	Submit(ctx context.Context, quizID, enrollmentID uint, answers []AnswerPair) error
	IsCompleted(ctx context.Context, quizID, enrollmentID uint) (bool, error)
}

var (
	ErrNoAttempt     = errors.New("no attempt in progress")
	ErrNotRunning    = errors.New("attempt is not running")
	ErrNothingChosen = errors.New("current question has no selected answer")
	ErrSubmitting    = errors.New("submission already in progress")
)

// Controller drives timed quiz attempts: at most one live timer per session
// key, absolute-end-time countdown, answer buffering, switch reconciliation
// and one-shot auto-submission on expiry.
type Controller struct {
	store    Store
	ledger   Ledger
	notifier Notifier

	now       func() time.Time
	tickEvery time.Duration

	mu      sync.Mutex
	runners map[string]*runner
}

// Option adjusts controller internals, mainly for tests.
type Option func(*Controller)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTickInterval changes the countdown tick period.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) { c.tickEvery = d }
}

func NewController(store Store, ledger Ledger, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		ledger:    ledger,
		notifier:  notifier,
		now:       time.Now,
		tickEvery: time.Second,
		runners:   make(map[string]*runner),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) publish(key string, ev Event) {
	if c.notifier != nil {
		c.notifier.Publish(key, ev)
	}
}

// Status is a snapshot of one attempt for the API layer.
type Status struct {
	State        State
	QuizID       uint
	EnrollmentID uint
	EndTime      int64
	RemainingSec int
	Cursor       int
	Selected     map[uint]uint
}

type runner struct {
	c   *Controller
	key string

	mu          sync.Mutex
	session     *Session
	state       State
	questionIDs []uint
	cursor      int
	expired     bool // one-shot latch on the Running -> Expiring edge
	submitting  bool
	lastErr     string
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// Start enters the attempt view for a quiz. It reconciles any stored session:
// same quiz resumes on the stored absolute end time, a different still-live
// quiz triggers the switch transition, and an already-completed quiz goes
// straight to the terminal state without a timer.
func (c *Controller) Start(ctx context.Context, key string, quizID, enrollmentID uint, duration time.Duration, questionIDs []uint) (*Status, error) {
	c.detach(key)

	completed, err := c.ledger.IsCompleted(ctx, quizID, enrollmentID)
	if err != nil {
		// A failed completion check is NOT treated as "not completed".
		return nil, fmt.Errorf("checking completion for quiz %d: %w", quizID, err)
	}
	if completed {
		if stored, loadErr := c.store.Load(ctx, key); loadErr == nil && stored != nil && stored.QuizID == quizID {
			if clearErr := c.store.Clear(ctx, key); clearErr != nil {
				log.Warn().Err(clearErr).Str("key", key).Msg("attempt: failed to purge stored session for completed quiz")
			}
		}
		return &Status{State: StateCompleted, QuizID: quizID, EnrollmentID: enrollmentID}, nil
	}

	stored, err := c.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading stored attempt: %w", err)
	}

	if stored != nil && stored.QuizID != quizID {
		if stored.Remaining(c.now()) > 0 {
			c.reconcileSwitch(ctx, key, stored)
		}
		if err := c.store.Clear(ctx, key); err != nil {
			return nil, fmt.Errorf("clearing stored attempt: %w", err)
		}
		stored = nil
	}

	session := stored
	if session == nil {
		session = &Session{
			QuizID:       quizID,
			EnrollmentID: enrollmentID,
			EndTime:      c.now().Add(duration).UnixMilli(),
			Selected:     make(map[uint]uint),
		}
	}
	if session.Selected == nil {
		session.Selected = make(map[uint]uint)
	}
	if err := c.store.Save(ctx, key, session); err != nil {
		return nil, fmt.Errorf("saving attempt session: %w", err)
	}

	r := &runner{
		c:           c,
		key:         key,
		session:     session,
		state:       StateRunning,
		questionIDs: questionIDs,
		stopCh:      make(chan struct{}),
	}

	c.mu.Lock()
	c.runners[key] = r
	c.mu.Unlock()

	if session.Remaining(c.now()) <= 0 {
		// Reconstructed past its end: no positive countdown is ever shown.
		r.expire()
	} else {
		go r.run()
	}

	return r.status(), nil
}

// reconcileSwitch auto-submits the buffered answers of a still-live attempt
// for a different quiz. Failure is surfaced as an event and is non-fatal to
// navigation; the old attempt is lost either way.
func (c *Controller) reconcileSwitch(ctx context.Context, key string, old *Session) {
	oldCompleted, err := c.ledger.IsCompleted(ctx, old.QuizID, old.EnrollmentID)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", old.QuizID).Msg("attempt: completion check failed during quiz switch")
		c.publish(key, Event{Type: EventError, QuizID: old.QuizID, Message: "could not reconcile previous attempt"})
		return
	}
	if !oldCompleted {
		if err := c.ledger.Submit(ctx, old.QuizID, old.EnrollmentID, old.Pairs()); err != nil {
			log.Warn().Err(err).Uint("quizID", old.QuizID).Msg("attempt: auto-submit of previous attempt failed during switch")
			c.publish(key, Event{Type: EventError, QuizID: old.QuizID, Message: "previous attempt could not be submitted"})
			return
		}
	}
	c.publish(key, Event{Type: EventSwitched, QuizID: old.QuizID})
}

func (c *Controller) runner(key string) (*runner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.runners[key]
	if !ok {
		return nil, ErrNoAttempt
	}
	return r, nil
}

// SelectAnswer updates the answer buffer and persists the whole session so a
// reload loses no progress.
func (c *Controller) SelectAnswer(ctx context.Context, key string, questionID, answerID uint) error {
	r, err := c.runner(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.session.Selected[questionID] = answerID
	snapshot := *r.session
	r.mu.Unlock()

	if err := c.store.Save(ctx, key, &snapshot); err != nil {
		return fmt.Errorf("persisting attempt session: %w", err)
	}
	return nil
}

// Next moves the displayed-question cursor forward. Movement is disabled once
// the timer has expired.
func (c *Controller) Next(key string) error { return c.moveCursor(key, 1) }

// Prev moves the displayed-question cursor back.
func (c *Controller) Prev(key string) error { return c.moveCursor(key, -1) }

func (c *Controller) moveCursor(key string, delta int) error {
	r, err := c.runner(key)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return ErrNotRunning
	}
	next := r.cursor + delta
	if next < 0 || next >= len(r.questionIDs) {
		return nil // bounded, not an error
	}
	r.cursor = next
	return nil
}

// Submit is the interactive submission path. It requires a selected answer on
// the displayed question and refuses once the attempt is expiring; failures
// leave the attempt running so the user may retry manually.
func (c *Controller) Submit(ctx context.Context, key string) (*Status, error) {
	r, err := c.runner(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return nil, ErrNotRunning
	}
	if len(r.questionIDs) > 0 {
		current := r.questionIDs[r.cursor]
		if _, chosen := r.session.Selected[current]; !chosen {
			r.mu.Unlock()
			return nil, ErrNothingChosen
		}
	}
	if r.submitting {
		r.mu.Unlock()
		return nil, ErrSubmitting
	}
	r.submitting = true
	r.state = StateSubmitting
	quizID, enrollmentID, pairs := r.session.QuizID, r.session.EnrollmentID, r.session.Pairs()
	r.mu.Unlock()

	if err := c.ledger.Submit(ctx, quizID, enrollmentID, pairs); err != nil {
		r.mu.Lock()
		r.submitting = false
		r.state = StateRunning
		r.lastErr = err.Error()
		r.mu.Unlock()
		c.publish(key, Event{Type: EventError, QuizID: quizID, Message: "submission failed"})
		return nil, fmt.Errorf("submitting attempt: %w", err)
	}

	r.finishCompleted(ctx)
	return r.status(), nil
}

// Status reports the attempt snapshot, or Idle when nothing is live.
func (c *Controller) Status(key string) *Status {
	r, err := c.runner(key)
	if err != nil {
		return &Status{State: StateIdle}
	}
	return r.status()
}

// Detach stops the session's timer ticks without cancelling any in-flight
// submission, mirroring an unmount of the attempt view.
func (c *Controller) Detach(key string) {
	c.detach(key)
}

func (c *Controller) detach(key string) {
	c.mu.Lock()
	r, ok := c.runners[key]
	if ok {
		delete(c.runners, key)
	}
	c.mu.Unlock()
	if ok {
		r.stopTicker()
	}
}

// Close stops every live runner. Wired to the fx shutdown hook.
func (c *Controller) Close() {
	c.mu.Lock()
	runners := make([]*runner, 0, len(c.runners))
	for _, r := range c.runners {
		runners = append(runners, r)
	}
	c.runners = make(map[string]*runner)
	c.mu.Unlock()
	for _, r := range runners {
		r.stopTicker()
	}
}

func (r *runner) run() {
	t := time.NewTicker(r.c.tickEvery)
	defer t.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-t.C:
			r.tick()
		}
	}
}

func (r *runner) tick() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	remaining := r.session.Remaining(r.c.now())
	quizID := r.session.QuizID
	r.mu.Unlock()

	if remaining <= 0 {
		r.expire()
		return
	}
	r.c.publish(r.key, Event{
		Type:         EventTick,
		QuizID:       quizID,
		RemainingSec: int(remaining.Round(time.Second) / time.Second),
	})
}

// expire performs the Running -> Expiring transition. The edge is legal only
// once: a latch keeps auto-submit from firing again no matter how many ticks
// observe an elapsed timer.
func (r *runner) expire() {
	r.mu.Lock()
	if r.expired {
		r.mu.Unlock()
		return
	}
	r.expired = true
	r.state = StateExpiring
	quizID := r.session.QuizID
	r.mu.Unlock()

	r.c.publish(r.key, Event{Type: EventExpired, QuizID: quizID})
	r.autoSubmit()
}

// autoSubmit is the expiry submission path: one shot, no retry. On failure
// the attempt lands in the terminal Failed state and the loss is surfaced as
// an event.
func (r *runner) autoSubmit() {
	r.mu.Lock()
	if r.submitting {
		r.mu.Unlock()
		return
	}
	r.submitting = true
	r.state = StateSubmitting
	quizID, enrollmentID, pairs := r.session.QuizID, r.session.EnrollmentID, r.session.Pairs()
	r.mu.Unlock()

	// Deliberately not tied to any request context: navigating away must not
	// cancel an in-flight submission.
	ctx := context.Background()
	if err := r.c.ledger.Submit(ctx, quizID, enrollmentID, pairs); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Uint("enrollmentID", enrollmentID).Msg("attempt: auto-submit on expiry failed")
		r.mu.Lock()
		r.submitting = false
		r.state = StateFailed
		r.lastErr = err.Error()
		r.mu.Unlock()
		r.c.publish(r.key, Event{Type: EventError, QuizID: quizID, Message: "auto-submission failed"})
		r.stopTicker()
		return
	}
	r.finishCompleted(ctx)
}

func (r *runner) finishCompleted(ctx context.Context) {
	r.mu.Lock()
	r.state = StateCompleted
	quizID := r.session.QuizID
	r.mu.Unlock()

	// The session key may have been handed to a newer attempt while this
	// submission was in flight; only clear a session for the quiz we just
	// submitted.
	if stored, err := r.c.store.Load(ctx, r.key); err != nil {
		log.Warn().Err(err).Str("key", r.key).Msg("attempt: failed to load stored session after submission")
	} else if stored != nil && stored.QuizID == quizID {
		if err := r.c.store.Clear(ctx, r.key); err != nil {
			log.Warn().Err(err).Str("key", r.key).Msg("attempt: failed to clear stored session after submission")
		}
	}
	r.c.publish(r.key, Event{Type: EventSubmitted, QuizID: quizID})
	r.stopTicker()
}

func (r *runner) stopTicker() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *runner) status() *Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := 0
	if r.state == StateRunning {
		if d := r.session.Remaining(r.c.now()); d > 0 {
			remaining = int(d.Round(time.Second) / time.Second)
		}
	}
	selected := make(map[uint]uint, len(r.session.Selected))
	for k, v := range r.session.Selected {
		selected[k] = v
	}
	return &Status{
		State:        r.state,
		QuizID:       r.session.QuizID,
		EnrollmentID: r.session.EnrollmentID,
		EndTime:      r.session.EndTime,
		RemainingSec: remaining,
		Cursor:       r.cursor,
		Selected:     selected,
	}
}
