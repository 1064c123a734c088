package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notas/internal/auth"
	"notas/internal/cache"
	apperrors "notas/internal/errors"
	"notas/internal/model"
	"notas/internal/validation"
)

func newTestAuthService(users *MockUserRepository, tokens *MockTokenStore, c *cache.Client) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(users, jwtService, tokens, c, validation.New(), nil), jwtService
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
		invalidField  string
	}{
		{
			name:     "successful registration",
			userName: "Ana",
			email:    "ana@example.com",
			password: "secret123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*model.User).ID = 1
					}).
					Return(nil)
			},
		},
		{
			name:     "email already taken",
			userName: "Ana",
			email:    "ana@example.com",
			password: "secret123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(&model.User{ID: 7, Email: "ana@example.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "concurrent duplicate caught by the unique index",
			userName: "Ana",
			email:    "ana@example.com",
			password: "secret123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrUserAlreadyExists)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:          "missing name",
			email:         "ana@example.com",
			password:      "secret123",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
			invalidField:  "name",
		},
		{
			name:          "blank name",
			userName:      "   ",
			email:         "ana@example.com",
			password:      "secret123",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
			invalidField:  "name",
		},
		{
			name:          "invalid email",
			userName:      "Ana",
			email:         "not-an-email",
			password:      "secret123",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
			invalidField:  "email",
		},
		{
			name:          "short password",
			userName:      "Ana",
			email:         "ana@example.com",
			password:      "12345",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
			invalidField:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tt.setupMock(users)
			svc, _ := newTestAuthService(users, new(MockTokenStore), nil)

			user, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				if tt.invalidField != "" {
					var verr *apperrors.ValidationError
					require.True(t, errors.As(err, &verr))
					assert.Contains(t, verr.Messages, tt.invalidField)
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, uint(1), user.ID)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)))
			}

			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &model.User{ID: 3, Name: "Ana", Email: "ana@example.com", PasswordHash: string(hashed)}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "ana@example.com",
			password: "secret123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "ana@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:          "missing password",
			email:         "ana@example.com",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tt.setupMock(users)
			svc, jwtService := newTestAuthService(users, new(MockTokenStore), nil)

			token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, stored.ID, claims.UserID)
				assert.Equal(t, stored.Email, claims.Email)
			}

			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes the presented token until it expires", func(t *testing.T) {
		tokens := new(MockTokenStore)
		tokens.On("Revoke", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 0 && ttl <= 30*time.Minute
		})).Return(nil)
		svc, _ := newTestAuthService(new(MockUserRepository), tokens, nil)

		err := svc.Logout(context.Background(), &auth.Identity{
			UserID:    1,
			TokenID:   "jti-1",
			ExpiresAt: time.Now().Add(30 * time.Minute),
		})

		assert.NoError(t, err)
		tokens.AssertExpectations(t)
	})

	t.Run("evicts the cached user", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c := cache.New(mr.Addr(), "", 0)
		t.Cleanup(func() { _ = c.Close() })

		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, uint(4)).
			Return(&model.User{ID: 4, Name: "Ana", Email: "ana@example.com"}, nil).
			Twice()
		tokens := new(MockTokenStore)
		tokens.On("Revoke", mock.Anything, "jti-4", mock.Anything).Return(nil)
		svc, _ := newTestAuthService(users, tokens, c)

		_, err := svc.WhoAmI(context.Background(), auth.Identity{UserID: 4})
		require.NoError(t, err)
		require.True(t, mr.Exists("notas:user:4"))

		require.NoError(t, svc.Logout(context.Background(), &auth.Identity{
			UserID:    4,
			TokenID:   "jti-4",
			ExpiresAt: time.Now().Add(time.Minute),
		}))
		assert.False(t, mr.Exists("notas:user:4"))

		// the next lookup goes back to the repository
		_, err = svc.WhoAmI(context.Background(), auth.Identity{UserID: 4})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("without a token it is a no-op", func(t *testing.T) {
		tokens := new(MockTokenStore)
		svc, _ := newTestAuthService(new(MockUserRepository), tokens, nil)

		assert.NoError(t, svc.Logout(context.Background(), nil))
		tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is reported", func(t *testing.T) {
		tokens := new(MockTokenStore)
		tokens.On("Revoke", mock.Anything, "jti-1", mock.Anything).Return(errors.New("redis down"))
		svc, _ := newTestAuthService(new(MockUserRepository), tokens, nil)

		err := svc.Logout(context.Background(), &auth.Identity{UserID: 1, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Minute)})
		assert.Error(t, err)
	})
}

func TestAuthService_WhoAmI(t *testing.T) {
	t.Run("served from cache after the first lookup", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c := cache.New(mr.Addr(), "", 0)
		t.Cleanup(func() { _ = c.Close() })

		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, uint(5)).
			Return(&model.User{ID: 5, Name: "Ana", Email: "ana@example.com"}, nil).
			Once()
		svc, _ := newTestAuthService(users, new(MockTokenStore), c)

		first, err := svc.WhoAmI(context.Background(), auth.Identity{UserID: 5})
		require.NoError(t, err)
		second, err := svc.WhoAmI(context.Background(), auth.Identity{UserID: 5})
		require.NoError(t, err)

		assert.Equal(t, first.Email, second.Email)
		assert.Equal(t, uint(5), second.ID)
		assert.True(t, mr.Exists("notas:user:5"))
		users.AssertExpectations(t)
	})

	t.Run("deleted user is unauthenticated", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, uint(9)).Return(nil, apperrors.ErrUserNotFound)
		svc, _ := newTestAuthService(users, new(MockTokenStore), nil)

		user, err := svc.WhoAmI(context.Background(), auth.Identity{UserID: 9})
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		assert.Nil(t, user)
	})

	t.Run("empty identity", func(t *testing.T) {
		svc, _ := newTestAuthService(new(MockUserRepository), new(MockTokenStore), nil)

		_, err := svc.WhoAmI(context.Background(), auth.Identity{})
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}
