package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/task-tracker/internal/comment"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) comment.RepositoryAPI {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *taskDatamodel.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(c).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*taskDatamodel.Comment, error) {
	var c taskDatamodel.Comment
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID int64) ([]*taskDatamodel.Comment, error) {
	var rows []*taskDatamodel.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
