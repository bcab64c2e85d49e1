package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fbclone/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix        = "user:%d"
	FriendCountKeyPrefix = "friends:count:%d"
)

const (
	UserTTL        = 5 * time.Minute
	FriendCountTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func FriendCountKey(userID uint) string {
	return fmt.Sprintf(FriendCountKeyPrefix, userID)
}

// Aside reads key into dest; on a miss it calls fetch, which must fill dest,
// and stores the result with ttl. Cache failures degrade to calling fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := fetch(); err != nil {
		return err
	}

	b, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateFriendCounts drops cached friend counts for both endpoints of an edge.
func InvalidateFriendCounts(ctx context.Context, a, b uint) {
	Invalidate(ctx, FriendCountKey(a), FriendCountKey(b))
}
