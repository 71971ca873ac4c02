package role

import (
	"encoding/json"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/validation"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
)

type CreateRoleDTO struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Level       int             `json:"level"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
}

// UpdateRoleDTO carries a partial update; nil fields keep their stored value.
type UpdateRoleDTO struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Level       *int            `json:"level,omitempty"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

func (d CreateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(50)
	v.Field("level", d.Level).Required().MinInt(MinLevel, errors.ErrCodeInvalidLevel).MaxInt(MaxLevel, errors.ErrCodeInvalidLevel)
	v.Field("permissions", []byte(d.Permissions)).Custom(validPermissions)
	return v.Validate()
}

func (d UpdateRoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(50)
	}
	if d.Level != nil {
		v.Field("level", *d.Level).MinInt(MinLevel, errors.ErrCodeInvalidLevel).MaxInt(MaxLevel, errors.ErrCodeInvalidLevel)
	}
	v.Field("permissions", []byte(d.Permissions)).Custom(validPermissions)
	return v.Validate()
}

func (d UpdateRoleDTO) IsEmpty() bool {
	return d.Name == nil && d.Description == nil && d.Level == nil && len(d.Permissions) == 0
}

func validPermissions(value interface{}) *errors.AppError {
	raw, _ := value.([]byte)
	if _, err := permission.Parse(raw); err != nil {
		return errors.NewValidationFieldError("permissions", err.Error(), errors.ErrCodeInvalidPermission)
	}
	return nil
}
