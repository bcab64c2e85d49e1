package session

import (
	"context"
	"testing"
	"time"

	"fbclone/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters"

func TestStore_CreateResolveDestroy(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	store := NewStore(rdb, testSecret, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)

	uid, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)

	require.NoError(t, store.Destroy(ctx, token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_ResolveRejectsBadTokens(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	store := NewStore(rdb, testSecret, time.Hour)
	ctx := context.Background()

	other := NewStore(rdb, "another-secret-at-least-32-characters", time.Hour)
	foreign, err := other.Create(ctx, 1)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", ID: "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"alg none":       unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Resolve(ctx, token)
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestStore_SessionExpiresWithRedisKey(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	store := NewStore(rdb, testSecret, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 7)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResetTokens_IssueLookupRevoke(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	tokens := NewResetTokens(rdb)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, 9)
	require.NoError(t, err)
	assert.True(t, mr.Exists("forget-password:"+token))

	uid, err := tokens.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), uid)

	require.NoError(t, tokens.Revoke(ctx, token))
	uid, err = tokens.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, uid)
}

func TestResetTokens_Expire(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	tokens := NewResetTokens(rdb)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, 3)
	require.NoError(t, err)

	mr.FastForward(ResetTokenTTL + time.Second)

	uid, err := tokens.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, uid)
}
