package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/domain"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

func TestRegisterAccount(t *testing.T) {
	f := newFixture(t)

	user, token, err := f.auth.RegisterAccount(context.Background(), RegisterInput{
		Name: "Ana", Email: " Ana@Example.com ", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, domain.RoleAttendee, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NotEmpty(t, token.Value)

	_, _, err = f.auth.RegisterAccount(context.Background(), RegisterInput{
		Name: "Ana again", Email: "ANA@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, _, err = f.auth.RegisterAccount(context.Background(), RegisterInput{
		Name: "x", Email: "x@example.com", Password: "password123", Role: "ROOT",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthenticateAndResolve(t *testing.T) {
	f := newFixture(t)
	registered := f.account(t, "ana@example.com", domain.RoleOrganizer)

	user, token, err := f.auth.Authenticate(context.Background(), "ANA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, domain.RoleOrganizer, token.Role)

	resolved, err := f.auth.ResolveIdentity(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)

	_, _, err = f.auth.Authenticate(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, _, err = f.auth.Authenticate(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = f.auth.ResolveIdentity(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	f := newFixture(t)
	admin := f.account(t, "admin@example.com", domain.RoleAdmin)
	f.account(t, "ana@example.com", domain.RoleAttendee)

	_, token, err := f.auth.Authenticate(context.Background(), "ana@example.com", "password123")
	require.NoError(t, err)

	user, err := f.store.Users().GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.NoError(t, f.users.DeactivateUser(context.Background(), admin, user.ID))

	_, err = f.auth.ResolveIdentity(context.Background(), token.Value)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, _, err = f.auth.Authenticate(context.Background(), "ana@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
