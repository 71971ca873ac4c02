package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeTaskHistory = "task.history"

// HistoryEntry is one audit row describing a task lifecycle event or a field change.
type HistoryEntry struct {
	TaskID     int64     `json:"task_id"`
	UserID     int64     `json:"user_id"`
	Action     string    `json:"action"`
	OldValue   *string   `json:"old_value,omitempty"`
	NewValue   *string   `json:"new_value,omitempty"`
	// OccurredAt is when the change was made, which can precede the write.
	OccurredAt time.Time `json:"occurred_at"`
}

type TaskHistoryEvent struct {
	BaseEvent
	TaskID  int64          `json:"task_id"`
	Entries []HistoryEntry `json:"entries"`
}

func NewTaskHistoryEvent(taskID int64, entries []HistoryEntry) *TaskHistoryEvent {
	return &TaskHistoryEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskHistory,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"task_id": taskID,
				"entries": len(entries),
			},
		},
		TaskID:  taskID,
		Entries: entries,
	}
}
