package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrRoleNotFound  = errors.New("role not found")
	ErrTokenNotFound = errors.New("refresh token not found")
)

// Repo is the gorm-backed record store for users, roles and refresh tokens.
// The auth service owns the whole write path through it.
type Repo struct {
	DB *gorm.DB
}
