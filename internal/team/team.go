package team

import (
	"time"

	teamDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/team"
	"github.com/frahmantamala/task-tracker/internal/user"
)

const (
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

var MemberRoles = []string{MemberRoleAdmin, MemberRoleMember}

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	MemberCount int64     `json:"member_count"`
	TaskCount   int64     `json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Member struct {
	ID       int64         `json:"id"`
	TeamID   int64         `json:"team_id"`
	UserID   int64         `json:"user_id"`
	Role     string        `json:"role"`
	JoinedAt time.Time     `json:"joined_at"`
	User     *user.Summary `json:"user,omitempty"`
}

func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == MemberRoleAdmin
}

func FromDataModel(t *teamDatamodel.TeamWithCounts) *Team {
	return &Team{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		MemberCount: t.MemberCount,
		TaskCount:   t.TaskCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func MemberFromDataModel(m *teamDatamodel.TeamMember) *Member {
	if m == nil {
		return nil
	}
	return &Member{
		ID:       m.ID,
		TeamID:   m.TeamID,
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
		User:     user.SummaryFromDataModel(m.User),
	}
}
