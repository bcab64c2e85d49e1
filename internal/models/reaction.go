package models

import "strings"

// ReactionKind is the emotional response a user attaches to a post.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "LIKE"
	ReactionLove  ReactionKind = "LOVE"
	ReactionCare  ReactionKind = "CARE"
	ReactionHaha  ReactionKind = "HAHA"
	ReactionWow   ReactionKind = "WOW"
	ReactionSad   ReactionKind = "SAD"
	ReactionAngry ReactionKind = "ANGRY"
)

// ReactionKinds lists every kind in display order.
var ReactionKinds = []ReactionKind{
	ReactionLike, ReactionLove, ReactionCare, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry,
}

// ParseReactionKind accepts any casing of a known kind.
func ParseReactionKind(s string) (ReactionKind, bool) {
	k := ReactionKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ReactionKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Column is the posts counter column maintained for this kind.
func (k ReactionKind) Column() string {
	return strings.ToLower(string(k)) + "_count"
}

// Reaction is a user's single current reaction to a post.
type Reaction struct {
	PostID   uint         `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID   uint         `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	Reaction ReactionKind `gorm:"type:varchar(16);not null" json:"reaction"`
	Value    int          `gorm:"not null;default:1" json:"value"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Reaction) TableName() string {
	return "reactions"
}

// ReactionTransition names the state change a react call produced.
type ReactionTransition string

const (
	ReactionAdded   ReactionTransition = "added"
	ReactionRemoved ReactionTransition = "removed"
	ReactionChanged ReactionTransition = "changed"
)
