// Package service holds the business rules behind each API operation. Services
// depend on repository interfaces and small ports for sessions, media and
// live delivery so they can be exercised with stubs.
package service

import (
	"context"
	"strings"

	"fbclone/internal/media"
	"fbclone/internal/models"
)

// SessionIssuer opens and closes login sessions.
type SessionIssuer interface {
	Create(ctx context.Context, userID uint) (string, error)
	Destroy(ctx context.Context, token string) error
}

// ResetTokenStore keeps password reset tokens.
type ResetTokenStore interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Lookup(ctx context.Context, token string) (uint, error)
	Revoke(ctx context.Context, token string) error
}

// MediaStore stores uploads and resolves stored keys.
type MediaStore interface {
	Store(ctx context.Context, prefix media.Prefix, in media.Upload) (string, error)
	URL(ctx context.Context, key *string) string
	Delete(ctx context.Context, key *string)
}

// NotificationPublisher pushes a stored notification to live subscribers.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// presentUser resolves media URLs and redacts u for viewerID. It copies u so
// cached values are never mutated.
func presentUser(ctx context.Context, store MediaStore, u *models.User, viewerID uint) *models.User {
	if u == nil {
		return nil
	}
	out := u.Redacted(viewerID)
	if store != nil {
		out.AvatarURL = store.URL(ctx, out.AvatarID)
		out.BannerURL = store.URL(ctx, out.BannerID)
	}
	return &out
}

func presentUsers(ctx context.Context, store MediaStore, users []*models.User, viewerID uint) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, presentUser(ctx, store, u, viewerID))
	}
	return out
}

// trimmed returns nil for nil or blank input and the trimmed value otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
