package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.GenerateAccessToken(42, "alice@x.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	id := IdentityFromClaims(claims)
	assert.Equal(t, uint(42), id.UserID)
	assert.Equal(t, claims.ID, id.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, 5*time.Second)
}

func TestJWTService_UniqueTokenIDs(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	a, err := svc.GenerateAccessToken(1, "a@x.com")
	require.NoError(t, err)
	b, err := svc.GenerateAccessToken(1, "a@x.com")
	require.NoError(t, err)

	ca, err := svc.ValidateToken(a)
	require.NoError(t, err)
	cb, err := svc.ValidateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	valid, err := svc.GenerateAccessToken(1, "a@x.com")
	require.NoError(t, err)

	expiredSvc := NewJWTService("test-secret", time.Minute)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateAccessToken(1, "a@x.com")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		svc   *JWTService
		token string
	}{
		{"wrong secret", NewJWTService("other-secret", time.Hour), valid},
		{"expired", svc, expired},
		{"alg none", svc, noneToken},
		{"no user", svc, anonymous},
		{"garbage", svc, "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestNewJWTService_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTokenTTL, NewJWTService("s", 0).TTL())
}
