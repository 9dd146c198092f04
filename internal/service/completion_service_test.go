package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type fakeQuizRepo struct {
	quizzes map[uint]*model.Quiz
}

func (f *fakeQuizRepo) Create(*model.Quiz) error                  { return errors.New("not implemented") }
func (f *fakeQuizRepo) Update(*model.Quiz) error                  { return errors.New("not implemented") }
func (f *fakeQuizRepo) Delete(uint) error                         { return errors.New("not implemented") }
func (f *fakeQuizRepo) FindByLessonID(uint) ([]model.Quiz, error) { return nil, nil }
func (f *fakeQuizRepo) ReplaceQuestions(uint, []model.Question) error {
	return errors.New("not implemented")
}

func (f *fakeQuizRepo) FindByID(id uint) (*model.Quiz, error) {
	return f.FindByIDWithQuestions(id)
}

func (f *fakeQuizRepo) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

type fakeEnrollmentRepo struct {
	enrollments map[uint]*model.Enrollment
}

func (f *fakeEnrollmentRepo) Create(*model.Enrollment) error { return errors.New("not implemented") }
func (f *fakeEnrollmentRepo) Update(*model.Enrollment) error { return errors.New("not implemented") }
func (f *fakeEnrollmentRepo) FindByStudentAndCourse(uint, uint) (*model.Enrollment, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEnrollmentRepo) FindAllByStudent(uint) ([]model.Enrollment, error) { return nil, nil }
func (f *fakeEnrollmentRepo) CreateVideoCompletion(*model.VideoCompletion) error {
	return errors.New("not implemented")
}
func (f *fakeEnrollmentRepo) CountVideoCompletions(uint) (int64, error) { return 0, nil }
func (f *fakeEnrollmentRepo) CountCourseVideos(uint) (int64, error)     { return 0, nil }

func (f *fakeEnrollmentRepo) FindByID(id uint) (*model.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

type fakeCompletionRepo struct {
	records map[[2]uint]*model.QuizCompletion
	// winner, when set, simulates a concurrent submission landing between the
	// duplicate pre-check and the insert.
	winner *model.QuizCompletion
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{records: make(map[[2]uint]*model.QuizCompletion)}
}

func (f *fakeCompletionRepo) Create(c *model.QuizCompletion) error {
	key := [2]uint{c.QuizID, c.EnrollmentID}
	if f.winner != nil {
		f.records[key] = f.winner
		return errors.New("duplicate key value violates unique constraint")
	}
	if _, ok := f.records[key]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	c.SubmittedAt = time.Now()
	f.records[key] = c
	return nil
}

func (f *fakeCompletionRepo) FindByQuizAndEnrollment(quizID, enrollmentID uint) (*model.QuizCompletion, error) {
	c, ok := f.records[[2]uint{quizID, enrollmentID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCompletionRepo) Exists(quizID, enrollmentID uint) (bool, error) {
	_, ok := f.records[[2]uint{quizID, enrollmentID}]
	return ok, nil
}

func threeQuestionQuiz() *model.Quiz {
	return &model.Quiz{
		ID:    1,
		Title: "Fractions",
		Questions: []model.Question{
			{
				ID:           10,
				QuestionText: "1/2 + 1/2 = ?",
				Answers: []model.Answer{
					{ID: 100, AnswerText: "1", IsCorrect: true},
					{ID: 101, AnswerText: "2"},
				},
			},
			{
				ID:           11,
				QuestionText: "1/4 + 1/4 = ?",
				Answers: []model.Answer{
					{ID: 110, AnswerText: "1/2", IsCorrect: true},
					{ID: 111, AnswerText: "1/8"},
				},
			},
			{
				ID:           12,
				QuestionText: "1/3 + 1/3 = ?",
				Answers: []model.Answer{
					{ID: 120, AnswerText: "2/3", IsCorrect: true},
					{ID: 121, AnswerText: "1/6"},
				},
			},
		},
	}
}

func newCompletionFixture() (CompletionService, *fakeCompletionRepo) {
	quizRepo := &fakeQuizRepo{quizzes: map[uint]*model.Quiz{1: threeQuestionQuiz()}}
	enrollmentRepo := &fakeEnrollmentRepo{enrollments: map[uint]*model.Enrollment{
		5: {ID: 5, StudentID: 42, CourseID: 9},
	}}
	completionRepo := newFakeCompletionRepo()
	return NewCompletionService(quizRepo, enrollmentRepo, completionRepo), completionRepo
}

func TestSubmitScoresUnansweredAsIncorrect(t *testing.T) {
	svc, _ := newCompletionFixture()

	// One correct, one wrong, one unanswered.
	resp, err := svc.Submit(1, 5, 42, []dto.SubmittedAnswerDTO{
		{QuestionID: 10, AnswerID: 100},
		{QuestionID: 11, AnswerID: 111},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if want := 1.0 / 3.0; resp.Score != want {
		t.Errorf("score = %v, want %v", resp.Score, want)
	}
	if resp.AlreadyCompleted {
		t.Error("first submission flagged as already completed")
	}
	if len(resp.Questions) != 3 {
		t.Fatalf("breakdown rows = %d, want 3", len(resp.Questions))
	}

	unanswered := resp.Questions[2]
	if unanswered.SubmittedAnswer != nil {
		t.Errorf("unanswered question has submitted answer %q", *unanswered.SubmittedAnswer)
	}
	if unanswered.Correct {
		t.Error("unanswered question scored as correct")
	}
	if unanswered.CorrectAnswer != "2/3" {
		t.Errorf("correct answer = %q, want 2/3", unanswered.CorrectAnswer)
	}
}

func TestSubmitDuplicateReturnsExistingRecord(t *testing.T) {
	svc, _ := newCompletionFixture()

	first, err := svc.Submit(1, 5, 42, []dto.SubmittedAnswerDTO{
		{QuestionID: 10, AnswerID: 100},
	})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// A perfect resubmission must not overwrite the recorded outcome.
	second, err := svc.Submit(1, 5, 42, []dto.SubmittedAnswerDTO{
		{QuestionID: 10, AnswerID: 100},
		{QuestionID: 11, AnswerID: 110},
		{QuestionID: 12, AnswerID: 120},
	})
	if err != nil {
		t.Fatalf("duplicate Submit: %v", err)
	}
	if !second.AlreadyCompleted {
		t.Error("duplicate submission not flagged")
	}
	if second.Score != first.Score {
		t.Errorf("duplicate submission changed score: %v -> %v", first.Score, second.Score)
	}
}

func TestSubmitLostRaceReturnsWinner(t *testing.T) {
	svc, repo := newCompletionFixture()
	repo.winner = &model.QuizCompletion{
		QuizID:       1,
		EnrollmentID: 5,
		Score:        1,
		Answers: []model.CompletionAnswer{
			{QuestionID: 10, AnswerID: 100},
			{QuestionID: 11, AnswerID: 110},
			{QuestionID: 12, AnswerID: 120},
		},
	}

	resp, err := svc.Submit(1, 5, 42, []dto.SubmittedAnswerDTO{
		{QuestionID: 10, AnswerID: 101},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.AlreadyCompleted {
		t.Error("lost race not reported as already completed")
	}
	if resp.Score != 1 {
		t.Errorf("score = %v, want the winner's 1", resp.Score)
	}
}

func TestSubmitRequiresOwnEnrollment(t *testing.T) {
	svc, _ := newCompletionFixture()

	if _, err := svc.Submit(1, 5, 99, nil); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("foreign enrollment: %v, want ErrNotEnrolled", err)
	}
	if _, err := svc.Submit(1, 404, 42, nil); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("missing enrollment: %v, want ErrNotEnrolled", err)
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	svc, _ := newCompletionFixture()

	if _, err := svc.Submit(404, 5, 42, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown quiz: %v, want ErrNotFound", err)
	}
}

func TestIsCompletedIsIdempotent(t *testing.T) {
	svc, _ := newCompletionFixture()

	done, err := svc.IsCompleted(1, 5)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if done {
		t.Fatal("completed before any submission")
	}

	if _, err := svc.Submit(1, 5, 42, []dto.SubmittedAnswerDTO{{QuestionID: 10, AnswerID: 100}}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for i := 0; i < 3; i++ {
		done, err := svc.IsCompleted(1, 5)
		if err != nil {
			t.Fatalf("IsCompleted #%d: %v", i, err)
		}
		if !done {
			t.Fatalf("IsCompleted #%d = false after submission", i)
		}
	}
}

func TestGetResultsForUnknownCompletion(t *testing.T) {
	svc, _ := newCompletionFixture()

	if _, err := svc.GetResults(1, 5, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("results without completion: %v, want ErrNotFound", err)
	}
}

func TestGetResultsScopedToStudent(t *testing.T) {
	svc, _ := newCompletionFixture()

	if _, err := svc.Submit(1, 5, 42, []dto.SubmittedAnswerDTO{{QuestionID: 10, AnswerID: 100}}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.GetResults(1, 5, 99); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("foreign student: %v, want ErrNotEnrolled", err)
	}
	if _, err := svc.GetResults(1, 5, 42); err != nil {
		t.Errorf("own results: %v", err)
	}
}
