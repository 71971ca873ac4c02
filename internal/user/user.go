package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/role"
)

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	RoleName     string     `json:"role"`
	RoleID       *int64     `json:"role_id"`
	AvatarURL    *string    `json:"avatar_url"`
	RoleDetails  *role.Role `json:"roleDetails,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Summary is the nested user shape embedded in tasks, comments and members.
type Summary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

func (u *User) IsAdminEligible() bool {
	return role.IsAdminEligible(u.RoleDetails)
}

func (u *User) CanCreateTeam() bool {
	return role.CanCreateTeam(u.RoleDetails)
}

// Actor is the service-facing view of the user.
func (u *User) Actor() role.Actor {
	return role.Actor{UserID: u.ID, Role: u.RoleDetails}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		RoleName:     u.RoleName,
		RoleID:       u.RoleID,
		AvatarURL:    u.AvatarURL,
		RoleDetails:  role.FromDataModel(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// SummaryFromDataModel returns nil for an unloaded association.
func SummaryFromDataModel(u *userDatamodel.User) *Summary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &Summary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
