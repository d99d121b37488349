package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const avatarURLPrefix = "https://i.pravatar.cc/150?u="

// AuthService coordinates signup and login flows.
type AuthService struct {
	users           repository.UserRepository
	tokenMgr        *auth.TokenManager
	bcryptCost      int
	verifyPasswords bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:           users,
		tokenMgr:        auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:      cfg.BcryptCost,
		verifyPasswords: cfg.VerifyPasswords,
	}
}

// Signup creates a new account. The role is always forced to customer and
// a placeholder avatar is generated; self-signup can never mint agents or
// admins.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		AvatarURL:    avatarURLPrefix + email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates by email. A known email succeeds regardless of the
// supplied password unless password verification is switched on; an
// unknown email always fails with the same invalid-credentials message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if s.verifyPasswords {
		if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Logout no-ops for the stateless JWT approach; the client discards its
// stored session.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// ListUsers returns accounts oldest first, optionally narrowed to one role.
func (s *AuthService) ListUsers(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	if role != nil {
		if !role.Valid() {
			return nil, apperrors.NewValidationError("invalid role filter", map[string]any{"role": string(*role)})
		}
		users, err := s.users.ListByRole(ctx, *role)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return users, nil
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
