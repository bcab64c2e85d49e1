// Package session issues and resolves login sessions backed by Redis.
//
// A session is a random id stored under sess:<id> with the owning user id as
// value. Clients hold an HS256 token whose jti is that id, so a session can be
// revoked server side by deleting the key even though the token is still
// well-formed.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	issuer   = "fbclone-api"
	audience = "fbclone-client"
)

// ErrNoSession is returned when a token is missing, invalid, expired or revoked.
var ErrNoSession = errors.New("session: no active session")

// Store is the Redis-backed session store.
type Store struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a Store signing tokens with secret.
func NewStore(rdb *redis.Client, secret string, ttl time.Duration) *Store {
	return &Store{
		rdb:    rdb,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of new sessions.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func sessionKey(id string) string {
	return "sess:" + id
}

// Create opens a session for userID and returns the client token.
func (s *Store) Create(ctx context.Context, userID uint) (string, error) {
	if s.rdb == nil {
		return "", errors.New("session: redis client is nil")
	}
	id := uuid.NewString()
	now := s.now()

	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(id), claims.Subject, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *Store) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

// Resolve returns the user id owning token. Revoked sessions yield ErrNoSession.
func (s *Store) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" || s.rdb == nil {
		return 0, ErrNoSession
	}
	claims, err := s.parse(token)
	if err != nil {
		return 0, err
	}

	stored, err := s.rdb.Get(ctx, sessionKey(claims.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	if stored != claims.Subject {
		return 0, ErrNoSession
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || uid == 0 {
		return 0, ErrNoSession
	}
	return uint(uid), nil
}

// Destroy revokes the session behind token. Unknown tokens are ignored.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if s.rdb == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKey(claims.ID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
