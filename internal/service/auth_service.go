package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req dto.RegisterDTO) (*dto.TokenResponseDTO, error)
	Login(req dto.LoginDTO) (*dto.TokenResponseDTO, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret []byte) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: jwtSecret}
}

func (s *authService) Register(req dto.RegisterDTO) (*dto.TokenResponseDTO, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, fmt.Errorf("email %s is already registered: %w", req.Email, ErrInvalidInput)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("email", req.Email).Msg("Register: email lookup failed")
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.userRepo.Create(&user); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Register: failed to create user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.tokenResponse(&user)
}

func (s *authService) Login(req dto.LoginDTO) (*dto.TokenResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidInput)
		}
		log.Error().Err(err).Str("email", req.Email).Msg("Login: user lookup failed")
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidInput)
	}

	return s.tokenResponse(user)
}

func (s *authService) tokenResponse(user *model.User) (*dto.TokenResponseDTO, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &dto.TokenResponseDTO{
		AccessToken: signed,
		User: dto.UserResponseDTO{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}
