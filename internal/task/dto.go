package task

import (
	"strings"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/patch"
	"github.com/frahmantamala/task-tracker/internal/core/common/validation"
)

type CreateTaskDTO struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	AssignedTo  *int64  `json:"assigned_to,omitempty"`
	TeamID      int64   `json:"team_id"`
	DueDate     *string `json:"due_date,omitempty"`
}

// UpdateTaskDTO carries only the fields present in the request body.
// Description, assigned_to and due_date may be cleared with null.
type UpdateTaskDTO struct {
	Title       patch.Field[string] `json:"title"`
	Description patch.Field[string] `json:"description"`
	Status      patch.Field[string] `json:"status"`
	Priority    patch.Field[string] `json:"priority"`
	AssignedTo  patch.Field[int64]  `json:"assigned_to"`
	DueDate     patch.Field[string] `json:"due_date"`
}

func (d *CreateTaskDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Status == "" {
		d.Status = DefaultStatus
	}
	if d.Priority == "" {
		d.Priority = DefaultPriority
	}
	if d.DueDate != nil && *d.DueDate == "" {
		d.DueDate = nil
	}
}

func (d CreateTaskDTO) Validate(createdBy int64) *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(255)
	v.Field("created_by", createdBy).Required()
	v.Field("team_id", d.TeamID).Required()
	v.Field("status", d.Status).OneOf(Statuses, errors.ErrCodeInvalidStatus)
	v.Field("priority", d.Priority).OneOf(Priorities, errors.ErrCodeInvalidPriority)
	v.Field("assigned_to", d.AssignedTo).MinInt(1, errors.ErrCodeValidationFailed)
	v.Field("due_date", d.DueDate).Date()
	return v.Validate()
}

func (d UpdateTaskDTO) IsEmpty() bool {
	return !d.Title.Set && !d.Description.Set && !d.Status.Set &&
		!d.Priority.Set && !d.AssignedTo.Set && !d.DueDate.Set
}

func (d UpdateTaskDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Title.Set {
		v.Field("title", d.Title.Value).Required().MaxLength(255)
	}
	if d.Status.Set {
		v.Field("status", d.Status.Value).Required().OneOf(Statuses, errors.ErrCodeInvalidStatus)
	}
	if d.Priority.Set {
		v.Field("priority", d.Priority.Value).Required().OneOf(Priorities, errors.ErrCodeInvalidPriority)
	}
	v.Field("assigned_to", d.AssignedTo.Value).MinInt(1, errors.ErrCodeValidationFailed)
	v.Field("due_date", d.DueDate.Value).Date()
	return v.Validate()
}

// Apply returns a copy of t with the present fields replaced.
func (d UpdateTaskDTO) Apply(t *Task) *Task {
	next := *t
	if d.Title.Set && d.Title.Value != nil {
		next.Title = strings.TrimSpace(*d.Title.Value)
	}
	if d.Description.Set {
		next.Description = d.Description.Value
	}
	if d.Status.Set && d.Status.Value != nil {
		next.Status = *d.Status.Value
	}
	if d.Priority.Set && d.Priority.Value != nil {
		next.Priority = *d.Priority.Value
	}
	if d.AssignedTo.Set {
		next.AssignedTo = d.AssignedTo.Value
	}
	if d.DueDate.Set {
		next.DueDate = d.DueDate.Value
		if next.DueDate != nil && *next.DueDate == "" {
			next.DueDate = nil
		}
	}
	return &next
}
