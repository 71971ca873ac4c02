package role

import (
	"time"

	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
)

const (
	NameAdmin   = "admin"
	NameManager = "manager"
	NameMember  = "member"

	// DefaultName is assigned to self-registered users.
	DefaultName = NameMember
)

const (
	MinLevel = 1
	MaxLevel = 10

	AdminPanelLevel   = 8
	TeamCreationLevel = 6
)

var systemRoles = map[string]struct{}{
	NameAdmin:   {},
	NameManager: {},
	NameMember:  {},
}

type Role struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Permissions permission.Set `json:"permissions"`
	Level       int            `json:"level"`
	CreatedBy   *int64         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func IsSystemRole(name string) bool {
	_, ok := systemRoles[name]
	return ok
}

func (r *Role) IsSystem() bool {
	return r != nil && IsSystemRole(r.Name)
}

// ResolveCapability reports whether r grants action on resource. A nil role grants nothing.
func ResolveCapability(r *Role, resource permission.Resource, action permission.Action) bool {
	if r == nil {
		return false
	}
	return r.Permissions.Allows(resource, action)
}

func IsAdminEligible(r *Role) bool {
	return r != nil && r.Level >= AdminPanelLevel
}

func CanCreateTeam(r *Role) bool {
	return r != nil && r.Level >= TeamCreationLevel
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID int64
	Role   *Role
}

func (a Actor) Can(resource permission.Resource, action permission.Action) bool {
	return ResolveCapability(a.Role, resource, action)
}

func (a Actor) IsAdminEligible() bool {
	return IsAdminEligible(a.Role)
}

func (a Actor) CanCreateTeam() bool {
	return CanCreateTeam(a.Role)
}

func ToDataModel(r *Role) *roleDatamodel.Role {
	return &roleDatamodel.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		Level:       r.Level,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	if r == nil {
		return nil
	}
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		Level:       r.Level,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
