package repository

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fbclone/internal/models"

	"gorm.io/gorm"
)

const (
	// DefaultPageLimit is used when the caller sends no limit.
	DefaultPageLimit = 10
	// MaxPageLimit caps every page.
	MaxPageLimit = 50
)

// ClampLimit bounds a requested page size to [1, MaxPageLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// Cursor marks the last row of a page in (created_at DESC, id DESC) order.
// ID is zero for legacy cursors that carry only a timestamp.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// EncodeCursor serializes the position of a row.
func EncodeCursor(createdAt time.Time, id uint) string {
	raw := fmt.Sprintf("%d:%d", createdAt.UnixMicro(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor. A bare millisecond timestamp is also
// accepted. An empty string yields a nil cursor.
func DecodeCursor(s string) (*Cursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &Cursor{CreatedAt: time.UnixMilli(ms).UTC()}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	tsPart, idPart, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, models.NewValidationError("invalid cursor")
	}
	micros, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return nil, models.NewValidationError("invalid cursor")
	}
	return &Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: uint(id)}, nil
}

// PageRequest is the common input of cursor-paginated queries.
type PageRequest struct {
	Limit  int
	Cursor string
}

// keysetPage applies newest-first ordering, the cursor predicate and the
// overfetch limit. The predicate is grouped so it always ANDs with filters.
func keysetPage(q *gorm.DB, table string, limit int, cursor *Cursor) *gorm.DB {
	createdAt := table + ".created_at"
	id := table + ".id"

	if cursor != nil {
		if cursor.ID == 0 {
			q = q.Where(createdAt+" < ?", cursor.CreatedAt)
		} else {
			q = q.Where("("+createdAt+" < ? OR ("+createdAt+" = ? AND "+id+" < ?))",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
	}
	return q.Order(createdAt + " DESC").Order(id + " DESC").Limit(limit + 1)
}

// trimPage drops the overfetched row and reports whether more rows exist.
func trimPage[T any](rows []T, limit int) ([]T, bool) {
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// buildPage trims rows and derives the next cursor from the last kept row.
func buildPage[T any](rows []T, limit int, position func(T) (time.Time, uint)) models.Page[T] {
	items, hasMore := trimPage(rows, limit)
	if items == nil {
		items = []T{}
	}
	page := models.Page[T]{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		page.NextCursor = EncodeCursor(position(items[len(items)-1]))
	}
	return page
}
