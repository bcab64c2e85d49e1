package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 72 * time.Hour

const resetPrefix = "forget-password:"

// ResetTokens stores single-use password reset tokens with a TTL.
type ResetTokens struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResetTokens creates a ResetTokens store.
func NewResetTokens(rdb *redis.Client) *ResetTokens {
	return &ResetTokens{rdb: rdb, ttl: ResetTokenTTL}
}

// Issue creates a token for userID.
func (r *ResetTokens) Issue(ctx context.Context, userID uint) (string, error) {
	if r.rdb == nil {
		return "", errors.New("session: redis client is nil")
	}
	token := uuid.NewString()
	if err := r.rdb.Set(ctx, resetPrefix+token, userID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// Lookup returns the user id bound to token, or 0 when it is unknown or expired.
func (r *ResetTokens) Lookup(ctx context.Context, token string) (uint, error) {
	if r.rdb == nil || token == "" {
		return 0, nil
	}
	val, err := r.rdb.Get(ctx, resetPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load reset token: %w", err)
	}
	uid, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, nil
	}
	return uint(uid), nil
}

// Revoke deletes token.
func (r *ResetTokens) Revoke(ctx context.Context, token string) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, resetPrefix+token).Err()
}
