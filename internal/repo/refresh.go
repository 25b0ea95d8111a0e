package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/keiworks/authd/internal/models"
)

// CreateRefreshToken inserts a new live record. The token column is unique;
// a duplicate insert surfaces as a driver error because issued tokens are
// expected to be cryptographically unique.
func (r *Repo) CreateRefreshToken(ctx context.Context, token string, expiresAt time.Time) error {
	record := models.RefreshToken{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&record).Error
}

// FindLiveRefreshToken returns the record for token if it exists and has not
// expired. An expired-but-undeleted row behaves exactly like a missing one.
func (r *Repo) FindLiveRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if record.ExpiresAt <= time.Now().Unix() {
		return nil, ErrTokenNotFound
	}
	return &record, nil
}

// DeleteRefreshToken removes the record by exact token match. Deleting a
// token that has no record is an error: it tells logout apart from
// "there was nothing to log out".
func (r *Repo) DeleteRefreshToken(ctx context.Context, token string) error {
	result := r.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
