// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"fbclone/internal/cache"
	"fbclone/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSearchLimit caps username search results.
const UserSearchLimit = 6

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateImage(ctx context.Context, id uint, kind models.ImageKind, key string) (previous *string, err error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SearchByUsername(ctx context.Context, query string, excludeID uint) ([]*models.User, error)
}

type userRepository struct {
	conns
}

// NewUserRepository returns a new UserRepository implementation. An optional
// second connection serves reads.
func NewUserRepository(db *gorm.DB, read ...*gorm.DB) UserRepository {
	return &userRepository{conns: newConns(db, read)}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.read.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	users := []*models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.read.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Create inserts user. A unique violation is returned as *DuplicateError
// naming the column that collided.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return &DuplicateError{Field: uniqueViolationColumn(err, "username", "email"), Err: err}
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// UpdateImage swaps the avatar or banner key and returns the key it replaced
// so the caller can remove the old object.
func (r *userRepository) UpdateImage(ctx context.Context, id uint, kind models.ImageKind, key string) (*string, error) {
	var previous *string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return err
		}
		if kind == models.ImageKindBanner {
			previous = user.BannerID
		} else {
			previous = user.AvatarID
		}
		return tx.Model(&models.User{}).Where("id = ?", id).Update(kind.Column(), key).Error
	})
	if err != nil {
		if models.IsNotFound(err) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return previous, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}
	if err := r.read.WithContext(ctx).
		Order("id ASC").
		Limit(ClampLimit(limit)).
		Offset(max(offset, 0)).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) SearchByUsername(ctx context.Context, query string, excludeID uint) ([]*models.User, error) {
	users := []*models.User{}
	q := strings.TrimSpace(query)
	if q == "" {
		return users, nil
	}
	if err := r.read.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\'`, likePattern(q)).
		Where("id <> ?", excludeID).
		Order("username ASC").
		Limit(UserSearchLimit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
