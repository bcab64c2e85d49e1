package models

import (
	"time"
)

// Post is a feed entry. The seven counters mirror the Reaction rows of each kind.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatorID uint      `gorm:"not null;index:idx_posts_creator_created,priority:1" json:"creator_id"`
	Creator   *User     `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	Text      string    `gorm:"type:text;not null;default:''" json:"text"`
	Feeling   *string   `gorm:"size:64" json:"feeling,omitempty"`
	Activity  *string   `gorm:"size:64" json:"activity,omitempty"`
	ImageID   *string   `gorm:"size:255" json:"image_id,omitempty"`
	Tagged    []uint    `gorm:"serializer:json;type:text" json:"tagged"`
	Like      int       `gorm:"column:like_count;not null;default:0" json:"like"`
	Love      int       `gorm:"column:love_count;not null;default:0" json:"love"`
	Care      int       `gorm:"column:care_count;not null;default:0" json:"care"`
	Haha      int       `gorm:"column:haha_count;not null;default:0" json:"haha"`
	Wow       int       `gorm:"column:wow_count;not null;default:0" json:"wow"`
	Sad       int       `gorm:"column:sad_count;not null;default:0" json:"sad"`
	Angry     int       `gorm:"column:angry_count;not null;default:0" json:"angry"`
	CreatedAt time.Time `gorm:"index:idx_posts_creator_created,priority:2;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ImageURL    string  `gorm:"-" json:"image_url,omitempty"`
	TaggedUsers []*User `gorm:"-" json:"tagged_users,omitempty"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// Counter returns the stored counter for kind.
func (p *Post) Counter(kind ReactionKind) int {
	switch kind {
	case ReactionLike:
		return p.Like
	case ReactionLove:
		return p.Love
	case ReactionCare:
		return p.Care
	case ReactionHaha:
		return p.Haha
	case ReactionWow:
		return p.Wow
	case ReactionSad:
		return p.Sad
	case ReactionAngry:
		return p.Angry
	}
	return 0
}
