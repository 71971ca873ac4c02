package postgres

import (
	"context"

	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/history"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) history.RepositoryAPI {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Insert(ctx context.Context, rows []*taskDatamodel.History) error {
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *HistoryRepository) ListByTask(ctx context.Context, taskID int64) ([]*taskDatamodel.History, error) {
	var rows []*taskDatamodel.History
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
