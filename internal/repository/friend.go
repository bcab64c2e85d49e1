package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"fbclone/internal/cache"
	"fbclone/internal/models"
	"fbclone/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// FriendTagLimit caps GetSuggestedFriendTags.
	FriendTagLimit = 20
	// StrangerSampleSize caps the fallback pool of friend suggestions.
	StrangerSampleSize = 20
)

// otherPartyExpr selects the endpoint of a friend_requests row that is not @me.
const otherPartyExpr = "CASE WHEN friend_requests.sender_id = @me THEN friend_requests.receiver_id ELSE friend_requests.sender_id END"

// mutualFriendsSQL counts accepted edges touching @a whose far endpoint also
// has an accepted edge to @b, matching all four direction combinations.
const mutualFriendsSQL = `
SELECT COUNT(*) FROM friend_requests f
WHERE f.status = @accepted
  AND ((f.sender_id = @a AND f.receiver_id <> @b) OR (f.receiver_id = @a AND f.sender_id <> @b))
  AND EXISTS (
    SELECT 1 FROM friend_requests g
    WHERE g.status = @accepted
      AND (
        (f.sender_id = @a AND g.sender_id = f.receiver_id AND g.receiver_id = @b) OR
        (f.sender_id = @a AND g.receiver_id = f.receiver_id AND g.sender_id = @b) OR
        (f.receiver_id = @a AND g.sender_id = f.sender_id AND g.receiver_id = @b) OR
        (f.receiver_id = @a AND g.receiver_id = f.sender_id AND g.sender_id = @b)
      )
  )`

// FriendRepository answers graph questions over friend_requests edges.
type FriendRepository interface {
	Create(ctx context.Context, senderID, receiverID uint) (bool, error)
	GetBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error)
	Accept(ctx context.Context, me, other uint) (bool, error)
	Remove(ctx context.Context, me, other uint) (bool, error)
	ListByUser(ctx context.Context, userID uint, status models.FriendRequestStatus, limit, skip int) ([]models.FriendRequestWithFriend, bool, error)
	ListIncoming(ctx context.Context, me uint) ([]models.FriendRequestWithFriend, error)
	ListTagged(ctx context.Context, me uint, search string) ([]models.FriendRequestWithFriend, error)
	CountFriends(ctx context.Context, userID uint) (int64, error)
	FriendIDs(ctx context.Context, userID uint, limit int) ([]uint, error)
	ConnectedIDs(ctx context.Context, userID uint) ([]uint, error)
	MutualCount(ctx context.Context, a, b uint) (int64, error)
	Strangers(ctx context.Context, me uint, limit int) ([]*models.User, error)
}

// friendRepository implements FriendRepository
type friendRepository struct {
	conns
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB, read ...*gorm.DB) FriendRepository {
	return &friendRepository{conns: newConns(db, read)}
}

// Create inserts an in-progress edge. It returns false for a self request or
// when any edge between the pair already exists, in either direction.
func (r *friendRepository) Create(ctx context.Context, senderID, receiverID uint) (bool, error) {
	if senderID == 0 || receiverID == 0 || senderID == receiverID {
		return false, nil
	}

	edge := models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestInProgress,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
			DoNothing: true,
		}).
		Create(&edge)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *friendRepository) GetBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	if a == b {
		return nil, nil
	}
	low, high := models.NormalizedPair(a, b)

	var edge models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Take(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

// Accept flips the edge between me and other to accepted.
func (r *friendRepository) Accept(ctx context.Context, me, other uint) (bool, error) {
	low, high := models.NormalizedPair(me, other)
	result := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Update("status", models.FriendRequestAccepted)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	cache.InvalidateFriendCounts(ctx, me, other)
	return result.RowsAffected == 1, nil
}

// Remove deletes the edge between me and other, whatever its status.
func (r *friendRepository) Remove(ctx context.Context, me, other uint) (bool, error) {
	low, high := models.NormalizedPair(me, other)
	result := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	cache.InvalidateFriendCounts(ctx, me, other)
	return result.RowsAffected == 1, nil
}

// ListByUser pages the edges touching userID with the given status, newest
// first. It fetches one extra row to report whether more exist.
func (r *friendRepository) ListByUser(ctx context.Context, userID uint, status models.FriendRequestStatus, limit, skip int) ([]models.FriendRequestWithFriend, bool, error) {
	defer observability.TrackQuery("list", "friend_requests")()

	limit = ClampLimit(limit)
	var edges []*models.FriendRequest
	if err := r.read.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, status).
		Order("created_at DESC").
		Order("id DESC").
		Offset(max(skip, 0)).
		Limit(limit + 1).
		Find(&edges).Error; err != nil {
		return nil, false, models.NewInternalError(err)
	}

	edges, hasMore := trimPage(edges, limit)
	return withFriends(edges, userID), hasMore, nil
}

// ListIncoming returns pending requests sent to me.
func (r *friendRepository) ListIncoming(ctx context.Context, me uint) ([]models.FriendRequestWithFriend, error) {
	var edges []*models.FriendRequest
	if err := r.read.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ? AND status = ?", me, models.FriendRequestInProgress).
		Order("created_at DESC").
		Order("id DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return withFriends(edges, me), nil
}

// ListTagged returns my edges of any status whose other endpoint's username
// contains search, case-insensitively.
func (r *friendRepository) ListTagged(ctx context.Context, me uint, search string) ([]models.FriendRequestWithFriend, error) {
	q := r.read.WithContext(ctx).Model(&models.FriendRequest{}).
		Select("friend_requests.*").
		Joins("JOIN users friend ON friend.id = "+otherPartyExpr, sql.Named("me", me)).
		Where("(friend_requests.sender_id = ? OR friend_requests.receiver_id = ?)", me, me).
		Preload("Sender").
		Preload("Receiver")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where(`LOWER(friend.username) LIKE ? ESCAPE '\'`, likePattern(s))
	}

	var edges []*models.FriendRequest
	if err := q.Order("friend.username ASC").Limit(FriendTagLimit).Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return withFriends(edges, me), nil
}

func withFriends(edges []*models.FriendRequest, viewerID uint) []models.FriendRequestWithFriend {
	out := make([]models.FriendRequestWithFriend, 0, len(edges))
	for _, edge := range edges {
		friend := edge.Receiver
		if edge.Role(viewerID) == models.RoleReceiver {
			friend = edge.Sender
		}
		out = append(out, models.FriendRequestWithFriend{FriendRequest: edge, Friend: friend})
	}
	return out
}

// CountFriends counts the accepted edges touching userID.
func (r *friendRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.FriendCountKey(userID), &count, cache.FriendCountTTL, func() error {
		return r.read.WithContext(ctx).Model(&models.FriendRequest{}).
			Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.FriendRequestAccepted).
			Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// FriendIDs returns up to limit accepted friends of userID, newest edge first.
func (r *friendRepository) FriendIDs(ctx context.Context, userID uint, limit int) ([]uint, error) {
	ids := []uint{}
	if err := r.read.WithContext(ctx).Model(&models.FriendRequest{}).
		Select(otherPartyExpr+" AS friend_id", sql.Named("me", userID)).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.FriendRequestAccepted).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Scan(&ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// ConnectedIDs returns every user sharing an edge of any status with userID.
func (r *friendRepository) ConnectedIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	if err := r.read.WithContext(ctx).Model(&models.FriendRequest{}).
		Select(otherPartyExpr+" AS friend_id", sql.Named("me", userID)).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Scan(&ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// MutualCount counts users with an accepted edge to both a and b.
func (r *friendRepository) MutualCount(ctx context.Context, a, b uint) (count int64, err error) {
	if a == b {
		return 0, nil
	}
	ctx, span := observability.StartRepositorySpan(ctx, "MutualCount", "friend_requests")
	defer func() { observability.EndSpan(span, err) }()

	if err = r.read.WithContext(ctx).Raw(mutualFriendsSQL,
		sql.Named("a", a),
		sql.Named("b", b),
		sql.Named("accepted", string(models.FriendRequestAccepted)),
	).Scan(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Strangers returns users that share no edge with me.
func (r *friendRepository) Strangers(ctx context.Context, me uint, limit int) ([]*models.User, error) {
	users := []*models.User{}
	if err := r.read.WithContext(ctx).
		Where("users.id <> ?", me).
		Where(`NOT EXISTS (
			SELECT 1 FROM friend_requests fr
			WHERE (fr.sender_id = users.id AND fr.receiver_id = ?)
			   OR (fr.receiver_id = users.id AND fr.sender_id = ?)
		)`, me, me).
		Order("users.id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
