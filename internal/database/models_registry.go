package database

import "fbclone/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Reaction{},
		&models.Comment{},
		&models.FriendRequest{},
		&models.Story{},
		&models.Notification{},
	}
}
