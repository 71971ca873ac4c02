package task

import (
	"time"

	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
)

type Task struct {
	ID           int64               `gorm:"primaryKey"`
	Title        string              `gorm:"column:title;not null"`
	Description  *string             `gorm:"column:description"`
	Status       string              `gorm:"column:status;not null;default:Not Started"`
	Priority     string              `gorm:"column:priority;not null;default:Medium"`
	AssignedTo   *int64              `gorm:"column:assigned_to;index"`
	CreatedBy    int64               `gorm:"column:created_by;not null;index"`
	TeamID       int64               `gorm:"column:team_id;not null;index"`
	DueDate      *time.Time          `gorm:"column:due_date"`
	CompletedAt  *time.Time          `gorm:"column:completed_at"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	AssignedUser *userDatamodel.User `gorm:"foreignKey:AssignedTo"`
	CreatedUser  *userDatamodel.User `gorm:"foreignKey:CreatedBy"`
}

func (Task) TableName() string {
	return "tasks"
}

type Milestone struct {
	ID         int64      `gorm:"primaryKey"`
	TaskID     int64      `gorm:"column:task_id;not null;index"`
	Title      string     `gorm:"column:title;not null"`
	Completed  bool       `gorm:"column:completed;not null;default:false"`
	DueDate    *time.Time `gorm:"column:due_date"`
	OrderIndex int        `gorm:"column:order_index;not null;default:0"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Milestone) TableName() string {
	return "milestones"
}

type Comment struct {
	ID        int64               `gorm:"primaryKey"`
	TaskID    int64               `gorm:"column:task_id;not null;index"`
	UserID    int64               `gorm:"column:user_id;not null"`
	Content   string              `gorm:"column:content;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	User      *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string {
	return "comments"
}

// History is one append-only audit row. task_id deliberately has no foreign key.
type History struct {
	ID        int64               `gorm:"primaryKey"`
	TaskID    int64               `gorm:"column:task_id;not null;index"`
	UserID    int64               `gorm:"column:user_id;not null"`
	Action    string              `gorm:"column:action;not null"`
	OldValue  *string             `gorm:"column:old_value"`
	NewValue  *string             `gorm:"column:new_value"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	User      *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (History) TableName() string {
	return "task_history"
}
