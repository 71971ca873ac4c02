package comment

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/validation"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/user"
)

const maxContentLength = 5000

type Comment struct {
	ID        int64         `json:"id"`
	TaskID    int64         `json:"task_id"`
	UserID    int64         `json:"user_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	User      *user.Summary `json:"user"`
}

type CreateCommentDTO struct {
	Content string `json:"content"`
}

func (d *CreateCommentDTO) Normalize() {
	d.Content = strings.TrimSpace(d.Content)
}

func (d CreateCommentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", d.Content).Required().MaxLength(maxContentLength)
	return v.Validate()
}

func FromDataModel(c *taskDatamodel.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		User:      user.SummaryFromDataModel(c.User),
	}
}
