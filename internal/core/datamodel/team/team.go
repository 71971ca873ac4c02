package team

import (
	"time"

	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
)

type Team struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	CreatedBy   int64     `gorm:"column:created_by;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamWithCounts is the list projection with derived counters.
type TeamWithCounts struct {
	Team
	MemberCount int64 `gorm:"column:member_count"`
	TaskCount   int64 `gorm:"column:task_count"`
}

type TeamMember struct {
	ID       int64               `gorm:"primaryKey"`
	TeamID   int64               `gorm:"column:team_id;not null;uniqueIndex:idx_team_members_team_user"`
	UserID   int64               `gorm:"column:user_id;not null;uniqueIndex:idx_team_members_team_user"`
	Role     string              `gorm:"column:role;not null;default:member"`
	JoinedAt time.Time           `gorm:"column:joined_at;autoCreateTime"`
	User     *userDatamodel.User `gorm:"foreignKey:UserID"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
