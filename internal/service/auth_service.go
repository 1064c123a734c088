package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"notas/internal/auth"
	"notas/internal/cache"
	apperrors "notas/internal/errors"
	"notas/internal/model"
	"notas/internal/repository"
	"notas/internal/validation"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

type registerInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, identity *auth.Identity) error
	WhoAmI(ctx context.Context, identity auth.Identity) (*model.User, error)
}

type authService struct {
	users     repository.UserRepository
	jwt       *auth.JWTService
	tokens    auth.TokenStore
	cache     *cache.Client
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	jwt *auth.JWTService,
	tokens auth.TokenStore,
	cache *cache.Client,
	validator *validation.Validator,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		users:     users,
		jwt:       jwt,
		tokens:    tokens,
		cache:     cache,
		validator: validator,
		logger:    logger,
	}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("notas:user:%d", id)
}

// Register creates a new user with hashed password.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	in := registerInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and issues a bearer token.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if err := s.validator.Validate(&in); err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "issue token", "user_id", user.ID, "err", err)
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenIssue, err)
	}
	return token, nil
}

// Logout revokes the presented credential for the rest of its lifetime and
// drops the cached user.
// Without a credential there is nothing to revoke.
func (s *authService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, identity.TokenID, time.Until(identity.ExpiresAt)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(identity.UserID))
	s.logger.InfoContext(ctx, "user logged out", "user_id", identity.UserID)
	return nil
}

// WhoAmI loads the user behind identity, served from cache when possible.
func (s *authService) WhoAmI(ctx context.Context, identity auth.Identity) (*model.User, error) {
	if identity.UserID == 0 {
		return nil, apperrors.ErrUnauthenticated
	}

	if data, _ := s.cache.Get(ctx, userCacheKey(identity.UserID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(user.ID), payload, userCacheTTL)
	}
	return user, nil
}
