package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// UserService manages accounts after sign-up.
type UserService struct {
	store      repository.Store
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// UserUpdateInput carries profile changes; nil means keep. Role and Active are admin-only.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
	Active   *bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{store: deps.Store, bcryptCost: cfg.BcryptCost, logger: loggerOrNop(deps.Logger)}
}

// ListUsers pages through all accounts.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.store.Users().List(ctx, limit, offset)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

// GetUser loads one account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// UpdateUser applies input to the account id on behalf of actor.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, input UserUpdateInput) (*domain.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("cannot modify another user")
	}
	if (input.Role != nil || input.Active != nil) && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can change role or status")
	}
	if actor.ID == id && (input.Role != nil || input.Active != nil) {
		return nil, apperrors.NewValidationError("cannot change your own role or status", nil)
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *input.Role})
	}

	var hash string
	if input.Password != nil {
		var err error
		if hash, err = hashPassword(*input.Password, s.bcryptCost); err != nil {
			return nil, err
		}
	}

	var updated *domain.User
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return storeError(err, "user")
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			user.Email = normalizeEmail(*input.Email)
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.Active != nil {
			user.Active = *input.Active
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
			}
			return storeError(err, "user")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	return updated, nil
}

// DeactivateUser disables an account. Registrations and owned events stay in place.
func (s *UserService) DeactivateUser(ctx context.Context, actor *domain.User, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("only administrators can deactivate users")
	}
	if actor.ID == id {
		return apperrors.NewValidationError("administrators cannot deactivate themselves", nil)
	}
	inactive := false
	_, err := s.UpdateUser(ctx, actor, id, UserUpdateInput{Active: &inactive})
	return err
}
