package models

import "time"

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotificationInfo         NotificationType = "info"
	NotificationReaction     NotificationType = "reaction"
	NotificationComment      NotificationType = "comment"
	NotificationFriendReq    NotificationType = "friend_req"
	NotificationFriendAccept NotificationType = "friend_accept"
)

// Valid reports whether t is a known type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationReaction, NotificationComment, NotificationFriendReq, NotificationFriendAccept:
		return true
	}
	return false
}

// NotificationStatus tracks whether the receiver has seen a notification.
type NotificationStatus string

const (
	NotificationSent     NotificationStatus = "sent"
	NotificationReceived NotificationStatus = "received"
)

// Notification is an activity item delivered to ReceiverID because of TriggerID.
// The (type, post_id, trigger_id) index suppresses duplicates for post activity;
// rows without a post never collide because NULLs are distinct.
type Notification struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	Info       string             `gorm:"type:text;not null;default:''" json:"info"`
	Type       NotificationType   `gorm:"type:varchar(20);not null;default:'info';uniqueIndex:idx_notifications_dedupe,priority:1" json:"type"`
	Status     NotificationStatus `gorm:"type:varchar(20);not null;default:'sent';index" json:"status"`
	ReceiverID uint               `gorm:"not null;index:idx_notifications_receiver_created,priority:1" json:"receiver_id"`
	Receiver   *User              `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	TriggerID  uint               `gorm:"not null;uniqueIndex:idx_notifications_dedupe,priority:3" json:"trigger_id"`
	Trigger    *User              `gorm:"foreignKey:TriggerID;constraint:OnDelete:CASCADE" json:"trigger,omitempty"`
	Link       string             `gorm:"size:512;not null;default:'#'" json:"link"`
	PostID     *uint              `gorm:"uniqueIndex:idx_notifications_dedupe,priority:2" json:"post_id,omitempty"`
	CreatedAt  time.Time          `gorm:"index:idx_notifications_receiver_created,priority:2" json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
