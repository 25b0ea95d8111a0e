package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/keiworks/authd/internal/models"
)

func (r *Repo) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// SeedRoles creates any of the named roles that do not exist yet. It runs at
// startup; the role set is static afterwards.
func (r *Repo) SeedRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		role := models.Role{Name: name}
		if err := r.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
