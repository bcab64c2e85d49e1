package models

import "time"

// DefaultStoryTime is the display duration of a story in milliseconds.
const DefaultStoryTime = 5000

// StoryWindow is how long a story stays visible after creation.
const StoryWindow = 72 * time.Hour

// Story is a short-lived status update. Visibility is filtered at query time.
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_stories_user_created,priority:1" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Text      *string   `gorm:"type:text" json:"text,omitempty"`
	Font      *string   `gorm:"size:64" json:"font,omitempty"`
	Gradient  *string   `gorm:"size:255" json:"gradient,omitempty"`
	Time      int       `gorm:"not null;default:5000" json:"time"`
	ImageID   *string   `gorm:"size:255" json:"image_id,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_stories_user_created,priority:2;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

// TableName specifies the table name for GORM
func (Story) TableName() string {
	return "stories"
}
