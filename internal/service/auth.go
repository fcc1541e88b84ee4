package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/security"
)

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	store        repository.Store
	tokenManager security.TokenManager
}

func NewAuthService(store repository.Store, tokenManager security.TokenManager) AuthService {
	return &authService{
		store:        store,
		tokenManager: tokenManager,
	}
}

func (s *authService) Register(ctx context.Context, name, email, phone, password string) (*domain.User, error) {
	logger.EnterMethod("authService.Register", "email", email)

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Role:         domain.UserRoleUser,
	}
	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, email)
		}
		logger.ExitMethodWithError("authService.Register", err, "email", email)
		return nil, err
	}

	logger.ExitMethod("authService.Register", "userID", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	logger.EnterMethod("authService.Login", "email", email)

	user, err := s.store.Repos().Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrForbidden, ErrInvalidCredentials)
		}
		return nil, "", time.Time{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrForbidden, ErrInvalidCredentials)
	}

	token, expiresAt, err := s.tokenManager.GenerateAccessToken(user)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err, "userID", user.ID)
		return nil, "", time.Time{}, err
	}

	logger.ExitMethod("authService.Login", "userID", user.ID)
	return user, token, expiresAt, nil
}
