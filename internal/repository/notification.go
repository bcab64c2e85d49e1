package repository

import (
	"context"
	"time"

	"fbclone/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository stores activity notifications.
type NotificationRepository interface {
	// Create inserts n unless it is self-triggered or duplicates an existing
	// (type, post_id, trigger_id) row.
	Create(ctx context.Context, n *models.Notification) (bool, error)
	List(ctx context.Context, receiverID uint, page PageRequest) (models.Page[*models.Notification], error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	MarkReceived(ctx context.Context, receiverID uint, ids []uint) (int64, error)
}

type notificationRepository struct {
	conns
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB, read ...*gorm.DB) NotificationRepository {
	return &notificationRepository{conns: newConns(db, read)}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) (bool, error) {
	if n.TriggerID == 0 || n.TriggerID == n.ReceiverID {
		return false, nil
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if n.Status == "" {
		n.Status = models.NotificationSent
	}
	if n.Link == "" {
		n.Link = "#"
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if isForeignKeyError(result.Error) {
		// Receiver or post deleted underneath us.
		return false, nil
	}
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *notificationRepository) List(ctx context.Context, receiverID uint, page PageRequest) (models.Page[*models.Notification], error) {
	limit := ClampLimit(page.Limit)
	cursor, err := DecodeCursor(page.Cursor)
	if err != nil {
		return models.Page[*models.Notification]{}, err
	}

	q := r.read.WithContext(ctx).Model(&models.Notification{}).
		Preload("Trigger").
		Where("notifications.receiver_id = ?", receiverID)

	var rows []*models.Notification
	if err := keysetPage(q, "notifications", limit, cursor).Find(&rows).Error; err != nil {
		return models.Page[*models.Notification]{}, models.NewInternalError(err)
	}
	return buildPage(rows, limit, func(n *models.Notification) (time.Time, uint) {
		return n.CreatedAt, n.ID
	}), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	if err := r.read.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND status = ?", receiverID, models.NotificationSent).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkReceived flips the given notifications of receiverID to received. Ids
// belonging to other users are ignored.
func (r *notificationRepository) MarkReceived(ctx context.Context, receiverID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND id IN ?", receiverID, ids).
		Update("status", models.NotificationReceived)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
