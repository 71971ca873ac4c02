package user

import (
	"time"

	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
)

type User struct {
	ID           int64               `gorm:"primaryKey"`
	Email        string              `gorm:"column:email;uniqueIndex;not null"`
	Name         string              `gorm:"column:name;not null"`
	PasswordHash string              `gorm:"column:password_hash;not null"`
	RoleName     string              `gorm:"column:role;not null;default:member"`
	RoleID       *int64              `gorm:"column:role_id"`
	AvatarURL    *string             `gorm:"column:avatar_url"`
	Role         *roleDatamodel.Role `gorm:"foreignKey:RoleID"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
