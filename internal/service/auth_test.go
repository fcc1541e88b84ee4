package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository/memory"
	"vehicle-rental-backend/internal/security"
	"vehicle-rental-backend/internal/service"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager("a-test-secret-that-is-long-enough", time.Hour)
	svc := service.NewAuthService(memory.NewStore(), tokens)

	t.Run("Register", func(t *testing.T) {
		user, err := svc.Register(ctx, "Jane Doe", "jane@example.com", "+1555", "correct-horse")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, domain.UserRoleUser, user.Role)
		assert.NotEqual(t, "correct-horse", user.PasswordHash)
	})

	t.Run("Register duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Jane Again", "JANE@example.com", "", "correct-horse")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Register validation", func(t *testing.T) {
		_, err := svc.Register(ctx, "Jane", "not-an-email", "", "correct-horse")
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Register(ctx, " ", "x@example.com", "", "correct-horse")
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Register(ctx, "Jane", "y@example.com", "", "short")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Login issues a token for the user", func(t *testing.T) {
		user, token, expiresAt, err := svc.Login(ctx, "jane@example.com", "correct-horse")
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, domain.Actor{UserID: user.ID, Role: domain.UserRoleUser, Permissions: []domain.Permission{}}, claims.Actor())
	})

	t.Run("Login wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "jane@example.com", "wrong-horse")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Login unknown email", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "nobody@example.com", "correct-horse")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}
