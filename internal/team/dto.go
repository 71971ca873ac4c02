package team

import (
	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/validation"
)

type CreateTeamDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type AddMemberDTO struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

func (d CreateTeamDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	return v.Validate()
}

func (d AddMemberDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required()
	v.Field("role", d.Role).OneOf(MemberRoles, errors.ErrCodeValidationFailed)
	return v.Validate()
}
