package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound signals an unknown or expired bearer token.
var ErrTokenNotFound = errors.New("auth: token not found")

// TokenStore keeps opaque bearer tokens in Redis with a sliding TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue mints a fresh token for the user and persists it.
func (ts *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := ts.client.Set(ctx, ts.redisKey(token), strconv.FormatInt(userID, 10), ts.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to its user id and refreshes the TTL.
func (ts *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	value, err := ts.client.Get(ctx, ts.redisKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, ErrTokenNotFound
	}
	_ = ts.client.Expire(ctx, ts.redisKey(token), ts.ttl).Err()
	return userID, nil
}

// Revoke deletes a token, logging the user out of that session.
func (ts *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := ts.client.Del(ctx, ts.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured token lifetime.
func (ts *TokenStore) TTL() time.Duration {
	return ts.ttl
}

func (ts *TokenStore) redisKey(token string) string {
	return "token:" + token
}
