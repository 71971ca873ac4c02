package milestone

import (
	"time"

	"github.com/frahmantamala/task-tracker/internal/core/common/dateonly"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
)

type Milestone struct {
	ID         int64     `json:"id"`
	TaskID     int64     `json:"task_id"`
	Title      string    `json:"title"`
	Completed  bool      `json:"completed"`
	DueDate    *string   `json:"due_date"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromDataModel(m *taskDatamodel.Milestone) *Milestone {
	return &Milestone{
		ID:         m.ID,
		TaskID:     m.TaskID,
		Title:      m.Title,
		Completed:  m.Completed,
		DueDate:    dateonly.Format(m.DueDate),
		OrderIndex: m.OrderIndex,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
