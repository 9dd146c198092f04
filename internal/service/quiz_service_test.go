package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testTeacherID = uint(1)
	testOtherID   = uint(2)
)

type quizFixture struct {
	svc      QuizService
	db       *gorm.DB
	lessonID uint
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Section{},
		&model.Lesson{},
		&model.Quiz{},
		&model.Question{},
		&model.Answer{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	teacher := model.User{Name: "T", Email: "t@example.com", PasswordHash: "x", Role: model.RoleTeacher}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("seeding teacher: %v", err)
	}
	course := model.Course{OwnerID: teacher.ID, Title: "Math", Code: "MATH1234"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seeding course: %v", err)
	}
	section := model.Section{CourseID: course.ID, Title: "Unit 1"}
	if err := db.Create(&section).Error; err != nil {
		t.Fatalf("seeding section: %v", err)
	}
	lesson := model.Lesson{SectionID: section.ID, Title: "Fractions"}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("seeding lesson: %v", err)
	}

	svc := NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewLessonRepository(db),
	)
	return &quizFixture{svc: svc, db: db, lessonID: lesson.ID}
}

func (f *quizFixture) createQuiz(t *testing.T) *dto.QuizResponseDTO {
	t.Helper()
	quiz, err := f.svc.CreateQuiz(f.lessonID, testTeacherID, dto.QuizCreateDTO{
		Title:           "Checkpoint",
		DurationMinutes: 15,
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	return quiz
}

func TestCreateQuizRequiresLessonOwnership(t *testing.T) {
	f := newQuizFixture(t)

	if _, err := f.svc.CreateQuiz(f.lessonID, testOtherID, dto.QuizCreateDTO{
		Title:           "Checkpoint",
		DurationMinutes: 15,
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign teacher: %v, want ErrForbidden", err)
	}
}

func TestCreateQuizValidatesTitleAndDuration(t *testing.T) {
	f := newQuizFixture(t)

	cases := []struct {
		name string
		req  dto.QuizCreateDTO
	}{
		{"short title", dto.QuizCreateDTO{Title: "ab", DurationMinutes: 15}},
		{"long title", dto.QuizCreateDTO{Title: strings.Repeat("x", 256), DurationMinutes: 15}},
		{"zero duration", dto.QuizCreateDTO{Title: "Checkpoint", DurationMinutes: 0}},
		{"negative duration", dto.QuizCreateDTO{Title: "Checkpoint", DurationMinutes: -5}},
	}
	for _, tc := range cases {
		if _, err := f.svc.CreateQuiz(f.lessonID, testTeacherID, tc.req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: %v, want ErrInvalidInput", tc.name, err)
		}
	}

	quiz := f.createQuiz(t)
	if _, err := f.svc.UpdateQuiz(quiz.ID, testTeacherID, dto.QuizUpdateDTO{
		Title:           "ab",
		DurationMinutes: 15,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("update with short title: %v, want ErrInvalidInput", err)
	}
}

func TestUpdateQuizReplacesQuestionSet(t *testing.T) {
	f := newQuizFixture(t)
	quiz := f.createQuiz(t)

	_, err := f.svc.CreateQuestion(quiz.ID, testTeacherID, dto.QuestionCreateDTO{
		QuestionText: "stale",
		Answers: []dto.AnswerCreateDTO{
			{AnswerText: "a", IsCorrect: true},
			{AnswerText: "b"},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	updated, err := f.svc.UpdateQuiz(quiz.ID, testTeacherID, dto.QuizUpdateDTO{
		Title:           "Checkpoint v2",
		DurationMinutes: 20,
		Questions: []dto.QuestionCreateDTO{
			{QuestionText: "fresh 1", Answers: []dto.AnswerCreateDTO{{AnswerText: "x", IsCorrect: true}, {AnswerText: "y"}}},
			{QuestionText: "fresh 2", Answers: []dto.AnswerCreateDTO{{AnswerText: "p"}, {AnswerText: "q", IsCorrect: true}}},
		},
	})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}

	if updated.Title != "Checkpoint v2" || updated.DurationMinutes != 20 {
		t.Errorf("metadata not updated: %+v", updated)
	}
	if len(updated.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(updated.Questions))
	}
	// Positions come from the submitted list order.
	for i, q := range updated.Questions {
		if q.OrderInQuiz != i {
			t.Errorf("question %q order = %d, want %d", q.QuestionText, q.OrderInQuiz, i)
		}
		if q.QuestionText == "stale" {
			t.Error("replaced question still present")
		}
	}
}

func TestGetQuizStudentViewHidesCorrectness(t *testing.T) {
	f := newQuizFixture(t)
	quiz := f.createQuiz(t)

	if _, err := f.svc.CreateQuestion(quiz.ID, testTeacherID, dto.QuestionCreateDTO{
		QuestionText: "2 + 2 = ?",
		Answers: []dto.AnswerCreateDTO{
			{AnswerText: "4", IsCorrect: true},
			{AnswerText: "5"},
		},
	}); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	view, err := f.svc.GetQuizStudentView(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuizStudentView: %v", err)
	}
	if len(view.Questions) != 1 || len(view.Questions[0].Answers) != 2 {
		t.Fatalf("unexpected view shape: %+v", view)
	}

	// The teacher view keeps the flags the student view must not carry.
	full, err := f.svc.GetQuiz(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	var flagged int
	for _, a := range full.Questions[0].Answers {
		if a.IsCorrect {
			flagged++
		}
	}
	if flagged != 1 {
		t.Errorf("teacher view correct flags = %d, want 1", flagged)
	}
}

func TestReorderQuestions(t *testing.T) {
	f := newQuizFixture(t)
	quiz := f.createQuiz(t)

	ids := make([]uint, 0, 3)
	for _, text := range []string{"A", "B", "C"} {
		q, err := f.svc.CreateQuestion(quiz.ID, testTeacherID, dto.QuestionCreateDTO{
			QuestionText: text,
			OrderInQuiz:  len(ids),
			Answers: []dto.AnswerCreateDTO{
				{AnswerText: "yes", IsCorrect: true},
				{AnswerText: "no"},
			},
		})
		if err != nil {
			t.Fatalf("CreateQuestion %s: %v", text, err)
		}
		ids = append(ids, q.ID)
	}

	// C, A, B
	err := f.svc.ReorderQuestions(quiz.ID, testTeacherID, dto.ReorderQuestionsDTO{
		QuestionIDs: []uint{ids[2], ids[0], ids[1]},
	})
	if err != nil {
		t.Fatalf("ReorderQuestions: %v", err)
	}

	got, err := f.svc.GetQuiz(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	want := []string{"C", "A", "B"}
	for i, q := range got.Questions {
		if q.QuestionText != want[i] {
			t.Errorf("question[%d] = %q, want %q", i, q.QuestionText, want[i])
		}
	}
}

func TestReorderRejectsForeignQuestion(t *testing.T) {
	f := newQuizFixture(t)
	quiz := f.createQuiz(t)

	err := f.svc.ReorderQuestions(quiz.ID, testTeacherID, dto.ReorderQuestionsDTO{
		QuestionIDs: []uint{9999},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("foreign question id: %v, want ErrInvalidInput", err)
	}
}

func TestDeleteQuestionChecksOwnership(t *testing.T) {
	f := newQuizFixture(t)
	quiz := f.createQuiz(t)

	q, err := f.svc.CreateQuestion(quiz.ID, testTeacherID, dto.QuestionCreateDTO{
		QuestionText: "doomed",
		Answers: []dto.AnswerCreateDTO{
			{AnswerText: "yes", IsCorrect: true},
			{AnswerText: "no"},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	if err := f.svc.DeleteQuestion(q.ID, testOtherID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: %v, want ErrForbidden", err)
	}
	if err := f.svc.DeleteQuestion(q.ID, testTeacherID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if _, err := f.svc.GetQuiz(quiz.ID); err != nil {
		t.Fatalf("GetQuiz after delete: %v", err)
	}
}
