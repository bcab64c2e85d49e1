package service

import (
	"context"
	"strings"

	"fbclone/internal/middleware"
	"fbclone/internal/models"
	"fbclone/internal/observability"
	"fbclone/internal/repository"
)

// NotificationService stores activity notifications and pushes new ones to
// the receiver's live connections.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	publisher        NotificationPublisher
	media            MediaStore
}

// CreateNotificationInput is a notification raised by the viewer for ReceiverID.
type CreateNotificationInput struct {
	ReceiverID uint                    `json:"receiver_id"`
	Type       models.NotificationType `json:"type"`
	Info       string                  `json:"info"`
	Link       string                  `json:"link"`
	PostID     *uint                   `json:"post_id"`
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	publisher NotificationPublisher,
	mediaStore MediaStore,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		media:            mediaStore,
	}
}

// CreateNotification stores a notification triggered by triggerID. It
// returns false for self-notifications, unknown receivers and duplicates of
// post activity.
func (s *NotificationService) CreateNotification(ctx context.Context, triggerID uint, in CreateNotificationInput) (bool, error) {
	if in.Type == "" {
		in.Type = models.NotificationInfo
	}
	if !in.Type.Valid() {
		return false, models.NewFieldError("type", "unknown notification type")
	}
	if in.ReceiverID == 0 {
		return false, models.NewFieldError("receiver_id", "cannot be empty")
	}
	if in.PostID != nil && *in.PostID == 0 {
		in.PostID = nil
	}
	if in.ReceiverID == triggerID {
		observability.NotificationsTotal.WithLabelValues(observability.Outcome(false)).Inc()
		return false, nil
	}
	if _, err := s.userRepo.GetByID(ctx, in.ReceiverID); err != nil {
		if models.IsNotFound(err) {
			observability.NotificationsTotal.WithLabelValues(observability.Outcome(false)).Inc()
			return false, nil
		}
		return false, err
	}

	n := &models.Notification{
		ReceiverID: in.ReceiverID,
		TriggerID:  triggerID,
		Type:       in.Type,
		Info:       strings.TrimSpace(in.Info),
		Link:       strings.TrimSpace(in.Link),
		PostID:     in.PostID,
	}
	created, err := s.notificationRepo.Create(ctx, n)
	if err != nil {
		return false, err
	}
	observability.NotificationsTotal.WithLabelValues(observability.Outcome(created)).Inc()
	if !created {
		return false, nil
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			// The row is stored; the client picks it up on its next fetch.
			middleware.Logger.WarnContext(ctx, "notification publish failed",
				"notification_id", n.ID, "receiver_id", n.ReceiverID, "error", err)
		}
	}
	return true, nil
}

// UserNotifications returns a page of the viewer's notifications, newest first.
func (s *NotificationService) UserNotifications(ctx context.Context, viewerID uint, page repository.PageRequest) (models.Page[*models.Notification], error) {
	result, err := s.notificationRepo.List(ctx, viewerID, page)
	if err != nil {
		return result, err
	}
	for _, n := range result.Items {
		n.Trigger = presentUser(ctx, s.media, n.Trigger, viewerID)
	}
	return result, nil
}

// NewNotificationsCount counts the viewer's unseen notifications.
func (s *NotificationService) NewNotificationsCount(ctx context.Context, viewerID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, viewerID)
}

// UpdateNotificationStatus marks ids received. Ids addressed to other users are ignored.
func (s *NotificationService) UpdateNotificationStatus(ctx context.Context, viewerID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.notificationRepo.MarkReceived(ctx, viewerID, uniqueIDs(ids))
}
