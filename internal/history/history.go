package history

import (
	"time"

	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/user"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"

	// ActionUpdatedPrefix is followed by the changed field name, e.g. updated_status.
	ActionUpdatedPrefix = "updated_"
)

type Entry struct {
	ID        int64         `json:"id"`
	TaskID    int64         `json:"task_id"`
	UserID    int64         `json:"user_id"`
	Action    string        `json:"action"`
	OldValue  *string       `json:"old_value"`
	NewValue  *string       `json:"new_value"`
	CreatedAt time.Time     `json:"created_at"`
	User      *user.Summary `json:"user,omitempty"`
}

func UpdatedAction(field string) string {
	return ActionUpdatedPrefix + field
}

func ToDataModel(e events.HistoryEntry) *taskDatamodel.History {
	return &taskDatamodel.History{
		TaskID:    e.TaskID,
		UserID:    e.UserID,
		Action:    e.Action,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		CreatedAt: e.OccurredAt,
	}
}

func FromDataModel(h *taskDatamodel.History) *Entry {
	return &Entry{
		ID:        h.ID,
		TaskID:    h.TaskID,
		UserID:    h.UserID,
		Action:    h.Action,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		CreatedAt: h.CreatedAt,
		User:      user.SummaryFromDataModel(h.User),
	}
}
