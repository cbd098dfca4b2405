package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and token resolution.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.Store.Users(),
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		bcryptCost: cfg.BcryptCost,
		logger:     loggerOrNop(deps.Logger),
	}
}

// RegisterAccount creates an active account and issues its first token.
func (s *AuthService) RegisterAccount(ctx context.Context, input RegisterInput) (*domain.User, *domain.Token, error) {
	if input.Role == "" {
		input.Role = domain.RoleAttendee
	}
	if !input.Role.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}

	hash, err := hashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, nil, storeError(err, "user")
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, token, nil
}

// Authenticate verifies credentials and issues a token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, *domain.Token, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, storeError(err, "user")
	}
	ok, err := auth.PasswordMatches(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, nil, apperrors.NewUnauthorized("account is deactivated")
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// ResolveIdentity maps a bearer token onto an existing active user.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	user, err := s.users.GetByID(ctx, claims.Identity().UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, storeError(err, "user")
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account is deactivated")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := auth.HashPassword(password, cost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password too long", map[string]any{"password": "max"})
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}
