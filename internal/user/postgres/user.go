package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var out userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// ListWithRoles orders by role level descending, then user name.
func (r *UserRepository) ListWithRoles(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Joins("LEFT JOIN roles ON roles.id = users.role_id").
		Order("roles.level DESC").
		Order("users.name ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, roleID int64, roleName string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"role_id": roleID,
			"role":    roleName,
		}).Error
}
