package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type submission struct {
	QuizID       uint
	EnrollmentID uint
	Pairs        []AnswerPair
}

type fakeLedger struct {
	mu          sync.Mutex
	completed   map[uint]bool
	completeErr error
	submitErr   error
	submissions []submission
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{completed: make(map[uint]bool)}
}

func (l *fakeLedger) Submit(_ context.Context, quizID, enrollmentID uint, pairs []AnswerPair) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitErr != nil {
		return l.submitErr
	}
	l.submissions = append(l.submissions, submission{QuizID: quizID, EnrollmentID: enrollmentID, Pairs: pairs})
	l.completed[quizID] = true
	return nil
}

func (l *fakeLedger) IsCompleted(_ context.Context, quizID, _ uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completeErr != nil {
		return false, l.completeErr
	}
	return l.completed[quizID], nil
}

func (l *fakeLedger) submitted() []submission {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]submission, len(l.submissions))
	copy(out, l.submissions)
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *fakeNotifier) Publish(_ string, ev Event) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func (n *fakeNotifier) ofType(t EventType) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, ev := range n.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestController(clock *fakeClock, ledger Ledger, notifier Notifier) *Controller {
	return NewController(NewMemoryStore(), ledger, notifier,
		WithClock(clock.Now), WithTickInterval(time.Millisecond))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

const key = "student-7"

func TestStartFreshAttempt(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, newFakeLedger(), nil)
	defer c.Close()

	st, err := c.Start(context.Background(), key, 1, 10, time.Minute, []uint{101, 102})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.State != StateRunning {
		t.Fatalf("state = %s, want %s", st.State, StateRunning)
	}
	if st.RemainingSec != 60 {
		t.Errorf("remaining = %d, want 60", st.RemainingSec)
	}
	if want := clock.Now().Add(time.Minute).UnixMilli(); st.EndTime != want {
		t.Errorf("end time = %d, want %d", st.EndTime, want)
	}
}

func TestResumeKeepsOriginalEndTime(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, newFakeLedger(), nil)
	defer c.Close()

	ctx := context.Background()
	first, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101, 102})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	c.Detach(key)

	clock.Advance(20 * time.Second)

	resumed, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101, 102})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.EndTime != first.EndTime {
		t.Errorf("end time changed on resume: %d != %d", resumed.EndTime, first.EndTime)
	}
	if resumed.RemainingSec != 40 {
		t.Errorf("remaining = %d, want 40", resumed.RemainingSec)
	}
	if resumed.Selected[101] != 5 {
		t.Errorf("selection lost on resume: %v", resumed.Selected)
	}
}

func TestStartPastEndAutoSubmitsImmediately(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	c := newTestController(clock, ledger, notifier)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	c.Detach(key)

	clock.Advance(2 * time.Minute)

	st, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101})
	if err != nil {
		t.Fatalf("resume past end: %v", err)
	}
	if st.State != StateCompleted {
		t.Fatalf("state = %s, want %s", st.State, StateCompleted)
	}
	if st.RemainingSec != 0 {
		t.Errorf("remaining = %d, want 0", st.RemainingSec)
	}
	subs := ledger.submitted()
	if len(subs) != 1 {
		t.Fatalf("submissions = %d, want 1", len(subs))
	}
	if len(subs[0].Pairs) != 1 || subs[0].Pairs[0].AnswerID != 5 {
		t.Errorf("buffered answers not submitted: %+v", subs[0].Pairs)
	}
	if got := notifier.ofType(EventExpired); len(got) != 1 {
		t.Errorf("expired events = %d, want 1", len(got))
	}
}

func TestExpiryFiresExactlyOnce(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	c := newTestController(clock, ledger, notifier)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	clock.Advance(61 * time.Second)

	waitFor(t, func() bool { return len(ledger.submitted()) > 0 })
	// Let further ticks observe the elapsed timer.
	time.Sleep(20 * time.Millisecond)

	if subs := ledger.submitted(); len(subs) != 1 {
		t.Fatalf("submissions = %d, want exactly 1", len(subs))
	}
	if got := notifier.ofType(EventExpired); len(got) != 1 {
		t.Errorf("expired events = %d, want exactly 1", len(got))
	}
	if st := c.Status(key); st.State != StateCompleted {
		t.Errorf("state = %s, want %s", st.State, StateCompleted)
	}
}

func TestSwitchAutoSubmitsPreviousQuiz(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	c := newTestController(clock, ledger, notifier)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start quiz 1: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	st, err := c.Start(ctx, key, 2, 10, time.Minute, []uint{201, 202})
	if err != nil {
		t.Fatalf("Start quiz 2: %v", err)
	}
	if st.State != StateRunning || st.QuizID != 2 {
		t.Fatalf("new attempt = %s quiz %d, want running quiz 2", st.State, st.QuizID)
	}
	if len(st.Selected) != 0 {
		t.Errorf("new attempt inherited selections: %v", st.Selected)
	}

	subs := ledger.submitted()
	if len(subs) != 1 || subs[0].QuizID != 1 {
		t.Fatalf("submissions = %+v, want one for quiz 1", subs)
	}
	if got := notifier.ofType(EventSwitched); len(got) != 1 {
		t.Errorf("switched events = %d, want 1", len(got))
	}
}

func TestSwitchSubmitFailureDoesNotBlockNavigation(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	ledger.submitErr = errors.New("ledger down")
	notifier := &fakeNotifier{}
	c := newTestController(clock, ledger, notifier)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start quiz 1: %v", err)
	}

	st, err := c.Start(ctx, key, 2, 10, time.Minute, []uint{201})
	if err != nil {
		t.Fatalf("switch must not fail on submit error: %v", err)
	}
	if st.State != StateRunning || st.QuizID != 2 {
		t.Fatalf("new attempt = %s quiz %d, want running quiz 2", st.State, st.QuizID)
	}
	if got := notifier.ofType(EventError); len(got) != 1 {
		t.Errorf("error events = %d, want 1", len(got))
	}
}

func TestStartAlreadyCompletedQuiz(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	ledger.completed[1] = true
	c := newTestController(clock, ledger, nil)
	defer c.Close()

	st, err := c.Start(context.Background(), key, 1, 10, time.Minute, []uint{101})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.State != StateCompleted {
		t.Fatalf("state = %s, want %s", st.State, StateCompleted)
	}
	if len(ledger.submitted()) != 0 {
		t.Error("completed quiz must not be resubmitted")
	}
}

func TestStartCompletionCheckFailure(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	ledger.completeErr = errors.New("db down")
	c := newTestController(clock, ledger, nil)
	defer c.Close()

	if _, err := c.Start(context.Background(), key, 1, 10, time.Minute, []uint{101}); err == nil {
		t.Fatal("Start must fail when the completion check fails")
	}
}

func TestSubmitRequiresSelectionOnCurrentQuestion(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	c := newTestController(clock, ledger, nil)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101, 102}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := c.Submit(ctx, key); !errors.Is(err, ErrNothingChosen) {
		t.Fatalf("Submit without selection: %v, want ErrNothingChosen", err)
	}

	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	st, err := c.Submit(ctx, key)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if st.State != StateCompleted {
		t.Errorf("state = %s, want %s", st.State, StateCompleted)
	}
	if len(ledger.submitted()) != 1 {
		t.Errorf("submissions = %d, want 1", len(ledger.submitted()))
	}
}

func TestSubmitFailureReturnsToRunning(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	ledger.submitErr = errors.New("ledger down")
	notifier := &fakeNotifier{}
	c := newTestController(clock, ledger, notifier)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	if _, err := c.Submit(ctx, key); err == nil {
		t.Fatal("Submit must surface the ledger error")
	}
	if st := c.Status(key); st.State != StateRunning {
		t.Errorf("state after failed submit = %s, want %s", st.State, StateRunning)
	}
	if got := notifier.ofType(EventError); len(got) != 1 {
		t.Errorf("error events = %d, want 1", len(got))
	}

	// The attempt stays live; a retry succeeds.
	ledger.mu.Lock()
	ledger.submitErr = nil
	ledger.mu.Unlock()
	if _, err := c.Submit(ctx, key); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
}

func TestCursorIsBounded(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, newFakeLedger(), nil)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101, 102}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := c.Prev(key); err != nil {
		t.Fatalf("Prev at lower bound: %v", err)
	}
	if st := c.Status(key); st.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", st.Cursor)
	}

	if err := c.Next(key); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := c.Next(key); err != nil {
		t.Fatalf("Next at upper bound: %v", err)
	}
	if st := c.Status(key); st.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", st.Cursor)
	}
}

func TestNavigationDisabledAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	ledger := newFakeLedger()
	ledger.submitErr = errors.New("ledger down") // auto-submit fails terminally
	c := newTestController(clock, ledger, nil)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101, 102}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.Advance(2 * time.Minute)
	waitFor(t, func() bool {
		st := c.Status(key)
		return st.State == StateFailed
	})

	if err := c.Next(key); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Next after expiry: %v, want ErrNotRunning", err)
	}
	if err := c.SelectAnswer(ctx, key, 102, 7); !errors.Is(err, ErrNotRunning) {
		t.Errorf("SelectAnswer after expiry: %v, want ErrNotRunning", err)
	}
	if _, err := c.Submit(ctx, key); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit after expiry: %v, want ErrNotRunning", err)
	}
}

// blockingLedger parks every Submit until release is closed.
type blockingLedger struct {
	*fakeLedger
	release chan struct{}
}

func (l *blockingLedger) Submit(ctx context.Context, quizID, enrollmentID uint, pairs []AnswerPair) error {
	<-l.release
	return l.fakeLedger.Submit(ctx, quizID, enrollmentID, pairs)
}

func TestLateAutoSubmitKeepsNewerSession(t *testing.T) {
	clock := newFakeClock()
	ledger := &blockingLedger{fakeLedger: newFakeLedger(), release: make(chan struct{})}
	store := NewMemoryStore()
	c := NewController(store, ledger, nil,
		WithClock(clock.Now), WithTickInterval(time.Millisecond))
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start quiz 1: %v", err)
	}

	// Expire quiz 1; its auto-submit parks inside the ledger.
	clock.Advance(2 * time.Minute)
	waitFor(t, func() bool { return c.Status(key).State == StateSubmitting })

	// The student starts quiz 2 under the same key while quiz 1 is still
	// submitting in the background.
	if _, err := c.Start(ctx, key, 2, 10, time.Minute, []uint{201}); err != nil {
		t.Fatalf("Start quiz 2: %v", err)
	}

	close(ledger.release)
	waitFor(t, func() bool { return len(ledger.submitted()) == 1 })

	stored, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored == nil || stored.QuizID != 2 {
		t.Fatalf("stored session = %+v, want quiz 2 intact", stored)
	}
}

func TestTicksPublishRemainingSeconds(t *testing.T) {
	clock := newFakeClock()
	notifier := &fakeNotifier{}
	c := newTestController(clock, newFakeLedger(), notifier)
	defer c.Close()

	if _, err := c.Start(context.Background(), key, 1, 10, time.Minute, []uint{101}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, func() bool { return len(notifier.ofType(EventTick)) >= 2 })
	for _, ev := range notifier.ofType(EventTick) {
		if ev.RemainingSec <= 0 || ev.RemainingSec > 60 {
			t.Fatalf("tick remaining = %d, want within (0, 60]", ev.RemainingSec)
		}
	}
}

func TestSelectAnswerPersistsSession(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	c := NewController(store, newFakeLedger(), nil,
		WithClock(clock.Now), WithTickInterval(time.Millisecond))
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Start(ctx, key, 1, 10, time.Minute, []uint{101, 102}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 5); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := c.SelectAnswer(ctx, key, 101, 6); err != nil {
		t.Fatalf("reselect: %v", err)
	}

	stored, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored == nil || stored.Selected[101] != 6 {
		t.Fatalf("stored session = %+v, want selection 101->6", stored)
	}
}

func TestStatusIdleWithoutAttempt(t *testing.T) {
	c := newTestController(newFakeClock(), newFakeLedger(), nil)
	defer c.Close()

	if st := c.Status("nobody"); st.State != StateIdle {
		t.Errorf("state = %s, want %s", st.State, StateIdle)
	}
	if err := c.Next("nobody"); !errors.Is(err, ErrNoAttempt) {
		t.Errorf("Next without attempt: %v, want ErrNoAttempt", err)
	}
}
