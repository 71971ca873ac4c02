package postgres

import (
	"context"
	"errors"

	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/milestone"
	"gorm.io/gorm"
)

type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) milestone.RepositoryAPI {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) ListByTask(ctx context.Context, taskID int64) ([]*taskDatamodel.Milestone, error) {
	var rows []*taskDatamodel.Milestone
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("order_index ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *MilestoneRepository) GetByID(ctx context.Context, id int64) (*taskDatamodel.Milestone, error) {
	var m taskDatamodel.Milestone
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepository) Append(ctx context.Context, m *taskDatamodel.Milestone) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&taskDatamodel.Milestone{}).Where("task_id = ?", m.TaskID).Count(&count).Error; err != nil {
			return err
		}
		m.OrderIndex = int(count)
		return tx.Create(m).Error
	})
}

func (r *MilestoneRepository) Update(ctx context.Context, id int64, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&taskDatamodel.Milestone{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *MilestoneRepository) UpdateOrder(ctx context.Context, taskID int64, indices map[int64]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, idx := range indices {
			err := tx.Model(&taskDatamodel.Milestone{}).
				Where("id = ? AND task_id = ?", id, taskID).
				Update("order_index", idx).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MilestoneRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskDatamodel.Milestone{})
	return res.RowsAffected > 0, res.Error
}
