package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/FoodStore/internal/auth"
	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/event"
	"github.com/utafrali/FoodStore/internal/repository"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
	"github.com/utafrali/FoodStore/pkg/validator"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Messages returned by the user endpoints.
const (
	MsgUserNotFound       = "User doesn't exist"
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidEmail       = "Please enter a valid email"
	MsgWeakPassword       = "Please enter a strong password"
	MsgNameRequired       = "Please enter your name"
)

// UserService implements registration and login.
type UserService struct {
	repo       repository.UserRepository
	jwtManager *auth.JWTManager
	publisher  event.Publisher
	logger     *slog.Logger
	cost       int
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.UserRepository,
	jwtManager *auth.JWTManager,
	publisher event.Publisher,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		repo:       repo,
		jwtManager: jwtManager,
		publisher:  publisher,
		logger:     logger,
		cost:       bcryptCost,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account and returns a session token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (string, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(&input); err != nil {
		return "", registerValidationError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := s.publisher.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return token, nil
}

// Login checks the credentials and returns a session token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (string, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validator.Validate(&input); err != nil {
		return "", apperrors.InvalidInput(MsgInvalidCredentials)
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.NotFoundMessage(MsgUserNotFound)
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", apperrors.Unauthorized(MsgInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// registerValidationError maps the first failing field to its message.
func registerValidationError(err error) error {
	var ve *validator.ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) == 0 {
		return apperrors.InvalidInput(err.Error())
	}
	switch ve.Errors[0].Field() {
	case "name":
		return apperrors.InvalidInput(MsgNameRequired)
	case "email":
		return apperrors.InvalidInput(MsgInvalidEmail)
	default:
		return apperrors.InvalidInput(MsgWeakPassword)
	}
}
