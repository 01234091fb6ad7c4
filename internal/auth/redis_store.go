package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	userTokensKeyPrefix   = "refresh_tokens:user:"
)

// RedisRefreshStore keeps refresh tokens in Redis with a TTL matching their
// expiry, plus a per-user set of jtis used for revocation.
type RedisRefreshStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// Ensure both stores implement RefreshStore
var (
	_ RefreshStore = (*RedisRefreshStore)(nil)
	_ RefreshStore = (*DBRefreshStore)(nil)
)

// NewRedisRefreshStore creates a RedisRefreshStore.
func NewRedisRefreshStore(client redis.Cmdable) *RedisRefreshStore {
	return &RedisRefreshStore{client: client, now: time.Now}
}

// Save stores the jti with a TTL until expiresAt.
func (s *RedisRefreshStore) Save(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("save refresh token: already expired")
	}

	userKey := userTokensKeyPrefix + userID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, refreshTokenKeyPrefix+jti, userID, ttl)
		pipe.SAdd(ctx, userKey, jti)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the jti with GETDEL.
func (s *RedisRefreshStore) Consume(ctx context.Context, jti string) (string, error) {
	userID, err := s.client.GetDel(ctx, refreshTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRefreshTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume refresh token: %w", err)
	}
	// Stale set members are harmless; RevokeUser deletes keys that no longer exist.
	_ = s.client.SRem(ctx, userTokensKeyPrefix+userID, jti).Err()
	return userID, nil
}

// RevokeUser deletes every refresh token recorded for the user.
func (s *RedisRefreshStore) RevokeUser(ctx context.Context, userID string) error {
	userKey := userTokensKeyPrefix + userID
	jtis, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list refresh tokens: %w", err)
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, refreshTokenKeyPrefix+jti)
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}
