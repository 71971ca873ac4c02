package postgres

import (
	"context"
	"errors"

	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
	"github.com/frahmantamala/task-tracker/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.db.WithContext(ctx).Order("level DESC").Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	var out roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	var out roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *RoleRepository) Create(ctx context.Context, in *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(in).Error
}

func (r *RoleRepository) Update(ctx context.Context, in *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Save(in).Error
}

// Delete never removes a system role, even if called directly.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND name NOT IN ?", id, []string{role.NameAdmin, role.NameManager, role.NameMember}).
		Delete(&roleDatamodel.Role{}).Error
}
