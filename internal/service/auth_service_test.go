package service

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testJWTSecret = []byte("test-secret")

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return NewAuthService(repository.NewUserRepository(db), testJWTSecret)
}

func TestRegisterIssuesValidToken(t *testing.T) {
	svc := newAuthService(t)

	resp, err := svc.Register(dto.RegisterDTO{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
		Role:     model.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Role != model.RoleTeacher {
		t.Errorf("role = %q, want teacher", resp.User.Role)
	}

	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return testJWTSecret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != model.RoleTeacher {
		t.Errorf("claims = %+v, want user %d role teacher", claims, resp.User.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	req := dto.RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "correct horse", Role: model.RoleStudent}
	if _, err := svc.Register(req); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(req); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("duplicate email: %v, want ErrInvalidInput", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register(dto.RegisterDTO{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse", Role: model.RoleStudent,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(dto.LoginDTO{Email: "ada@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Login(dto.LoginDTO{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad password: %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Login(dto.LoginDTO{Email: "nobody@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown email: %v, want ErrInvalidInput", err)
	}
}
