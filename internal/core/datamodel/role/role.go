package role

import (
	"time"

	"github.com/frahmantamala/task-tracker/internal/core/permission"
)

type Role struct {
	ID          int64          `gorm:"primaryKey"`
	Name        string         `gorm:"column:name;uniqueIndex;not null"`
	Description *string        `gorm:"column:description"`
	Permissions permission.Set `gorm:"column:permissions;type:jsonb;not null"`
	Level       int            `gorm:"column:level;not null;default:1"`
	CreatedBy   *int64         `gorm:"column:created_by"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}
