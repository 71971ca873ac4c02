package task

import (
	"time"

	"github.com/frahmantamala/task-tracker/internal/core/common/dateonly"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/user"
)

const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"

	DefaultStatus   = StatusNotStarted
	DefaultPriority = PriorityMedium
)

var (
	Statuses   = []string{StatusNotStarted, StatusInProgress, StatusCompleted}
	Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}
)

type Task struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  *string       `json:"description"`
	Status       string        `json:"status"`
	Priority     string        `json:"priority"`
	AssignedTo   *int64        `json:"assigned_to"`
	CreatedBy    int64         `json:"created_by"`
	TeamID       int64         `json:"team_id"`
	DueDate      *string       `json:"due_date"`
	CompletedAt  *time.Time    `json:"completed_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	AssignedUser *user.Summary `json:"assigned_user"`
	CreatedUser  *user.Summary `json:"created_user"`
}

type Filter struct {
	TeamID *int64
	UserID *int64
	// VisibleTo keeps tasks of the user's teams and tasks the user created or is assigned to.
	VisibleTo *int64
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

func FromDataModel(t *taskDatamodel.Task) *Task {
	return &Task{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		AssignedTo:   t.AssignedTo,
		CreatedBy:    t.CreatedBy,
		TeamID:       t.TeamID,
		DueDate:      dateonly.Format(t.DueDate),
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		AssignedUser: user.SummaryFromDataModel(t.AssignedUser),
		CreatedUser:  user.SummaryFromDataModel(t.CreatedUser),
	}
}
