package adminrequest

import (
	"strings"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/validation"
)

type SubmitDTO struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Reason *string `json:"reason,omitempty"`
}

type ReviewDTO struct {
	Status string `json:"status"`
}

func (d *SubmitDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Name = strings.TrimSpace(d.Name)
	if d.Reason != nil && strings.TrimSpace(*d.Reason) == "" {
		d.Reason = nil
	}
}

func (d SubmitDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("reason", d.Reason).MaxLength(2000)
	return v.Validate()
}

func (d ReviewDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(Decisions, errors.ErrCodeInvalidDecision)
	return v.Validate()
}

func validateStatusFilter(status string) *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", status).OneOf(Statuses, errors.ErrCodeInvalidStatus)
	return v.Validate()
}
