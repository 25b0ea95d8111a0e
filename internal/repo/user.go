package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/keiworks/authd/internal/models"
)

// FindUserByUsername loads a user with its role preloaded.
func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Role").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *Repo) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count, err
}
