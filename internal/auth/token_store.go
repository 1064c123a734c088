package auth

import (
	"context"
	"time"

	"notas/internal/cache"
)

const revokedTokenKeyPrefix = "notas:revoked_token:"

// TokenStore tracks credentials revoked by logout until they expire.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenStore keeps revoked token IDs in Redis.
type RedisTokenStore struct {
	cache *cache.Client
}

var _ TokenStore = (*RedisTokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *RedisTokenStore {
	return &RedisTokenStore{cache: cache}
}

// Revoke marks tokenID as logged out for ttl (the token's remaining lifetime).
func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked checks if a token was logged out. An unreachable Redis reads as
// not revoked, so tokens stay valid until their own expiry.
func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedTokenKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
