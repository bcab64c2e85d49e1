// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account. Email is redacted by the API for every viewer but the owner.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	AvatarID  *string   `gorm:"size:255" json:"avatar_id,omitempty"`
	BannerID  *string   `gorm:"size:255" json:"banner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Resolved from the media keys at read time.
	AvatarURL string `gorm:"-" json:"avatar_url,omitempty"`
	BannerURL string `gorm:"-" json:"banner_url,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Redacted returns a copy of u safe to show to viewerID.
func (u User) Redacted(viewerID uint) User {
	if viewerID == 0 || viewerID != u.ID {
		u.Email = ""
	}
	return u
}

// ImageKind selects which profile image an upload replaces.
type ImageKind string

const (
	ImageKindAvatar ImageKind = "avatar"
	ImageKindBanner ImageKind = "banner"
)

// Valid reports whether k is a known image kind.
func (k ImageKind) Valid() bool {
	return k == ImageKindAvatar || k == ImageKindBanner
}

// Column returns the users column holding the media key for k.
func (k ImageKind) Column() string {
	if k == ImageKindBanner {
		return "banner_id"
	}
	return "avatar_id"
}
