package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendRequestStatus is the lifecycle state of an edge. Rejection deletes the row.
type FriendRequestStatus string

const (
	FriendRequestInProgress FriendRequestStatus = "in-progress"
	FriendRequestAccepted   FriendRequestStatus = "accepted"
)

// EdgeRole describes how a viewer relates to an edge.
type EdgeRole string

const (
	RoleSender   EdgeRole = "sender"
	RoleReceiver EdgeRole = "receiver"
	RoleNone     EdgeRole = "none"
)

// FriendRequest is a relationship edge between two users. Direction records
// who initiated it; UserLowID/UserHighID hold the normalized pair so that at
// most one edge exists per pair regardless of direction.
type FriendRequest struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	SenderID   uint                `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint                `gorm:"not null;index" json:"receiver_id"`
	UserLowID  uint                `gorm:"not null;uniqueIndex:idx_friend_requests_pair,priority:1" json:"-"`
	UserHighID uint                `gorm:"not null;uniqueIndex:idx_friend_requests_pair,priority:2" json:"-"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'in-progress';index" json:"status"`
	CreatedAt  time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`

	Sender   *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// NormalizedPair orders two user ids so (a,b) and (b,a) map to the same key.
func NormalizedPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// BeforeCreate fills the normalized pair from the direction columns.
func (f *FriendRequest) BeforeCreate(_ *gorm.DB) error {
	f.UserLowID, f.UserHighID = NormalizedPair(f.SenderID, f.ReceiverID)
	return nil
}

// Role reports whether viewerID sent or received the edge.
func (f *FriendRequest) Role(viewerID uint) EdgeRole {
	switch viewerID {
	case f.SenderID:
		return RoleSender
	case f.ReceiverID:
		return RoleReceiver
	}
	return RoleNone
}

// OtherParty returns the endpoint that is not viewerID, or 0 if viewerID is not on the edge.
func (f *FriendRequest) OtherParty(viewerID uint) uint {
	switch viewerID {
	case f.SenderID:
		return f.ReceiverID
	case f.ReceiverID:
		return f.SenderID
	}
	return 0
}

// IsAccepted reports whether the edge is a friendship.
func (f *FriendRequest) IsAccepted() bool {
	return f.Status == FriendRequestAccepted
}

// FriendRequestWithFriend pairs an edge with the endpoint that is not the viewer.
type FriendRequestWithFriend struct {
	FriendRequest *FriendRequest `json:"friend_request"`
	Friend        *User          `json:"friend"`
}

// FriendRequestLookup is the edge between two users, if any, from the viewer's side.
type FriendRequestLookup struct {
	FriendRequest *FriendRequest `json:"friend_request"`
	IsSender      bool           `json:"is_sender"`
}

// SuggestedFriend is a friend-suggestion candidate.
type SuggestedFriend struct {
	User          *User `json:"user"`
	MutualFriends int64 `json:"mutual_friends"`
}

// FriendRequestPage is a page of edges touching a user.
type FriendRequestPage struct {
	Items         []FriendRequestWithFriend `json:"items"`
	HasMore       bool                      `json:"has_more"`
	MutualFriends *int64                    `json:"mutual_friends,omitempty"`
}
