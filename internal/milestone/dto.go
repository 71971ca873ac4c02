package milestone

import (
	"strings"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/patch"
	"github.com/frahmantamala/task-tracker/internal/core/common/validation"
)

type CreateMilestoneDTO struct {
	Title   string  `json:"title"`
	DueDate *string `json:"due_date,omitempty"`
}

// UpdateMilestoneDTO never touches order_index.
type UpdateMilestoneDTO struct {
	Title     patch.Field[string] `json:"title"`
	DueDate   patch.Field[string] `json:"due_date"`
	Completed patch.Field[bool]   `json:"completed"`
}

type OrderDTO struct {
	MilestoneIDs []int64 `json:"milestone_ids"`
}

type MoveDTO struct {
	TargetID int64 `json:"target_id"`
}

func (d *CreateMilestoneDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.DueDate != nil && *d.DueDate == "" {
		d.DueDate = nil
	}
}

func (d CreateMilestoneDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(255)
	v.Field("due_date", d.DueDate).Date()
	return v.Validate()
}

func (d UpdateMilestoneDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Title.Set {
		v.Field("title", d.Title.Value).Required().MaxLength(255)
	}
	if d.Completed.IsNull() {
		v.Field("completed", nil).Required()
	}
	v.Field("due_date", d.DueDate.Value).Date()
	return v.Validate()
}

func (d UpdateMilestoneDTO) IsEmpty() bool {
	return !d.Title.Set && !d.DueDate.Set && !d.Completed.Set
}

func (d OrderDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("milestone_ids", len(d.MilestoneIDs)).Required()
	return v.Validate()
}

func (d MoveDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("target_id", d.TargetID).Required()
	return v.Validate()
}
