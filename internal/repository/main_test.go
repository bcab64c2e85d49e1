package repository

import (
	"testing"

	"fbclone/internal/models"
	"fbclone/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB opens a private in-memory database with the full schema.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	return testutil.NewSQLite(t)
}

func seedUsers(t *testing.T, db *gorm.DB, names ...string) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, len(names))
	for _, name := range names {
		u := &models.User{Username: name, Email: name + "@example.com", Password: "hash"}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	return users
}

func seedPost(t *testing.T, db *gorm.DB, creatorID uint, text string) *models.Post {
	t.Helper()
	p := &models.Post{CreatorID: creatorID, Text: text, Tagged: []uint{}}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedEdge(t *testing.T, db *gorm.DB, sender, receiver uint, status models.FriendRequestStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.FriendRequest{SenderID: sender, ReceiverID: receiver, Status: status}).Error)
}
