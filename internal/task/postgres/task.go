package postgres

import (
	"context"
	"errors"

	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	teamDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/team"
	"github.com/frahmantamala/task-tracker/internal/task"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.RepositoryAPI {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *taskDatamodel.Task) error {
	return r.db.WithContext(ctx).Omit("AssignedUser", "CreatedUser").Create(t).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*taskDatamodel.Task, error) {
	var t taskDatamodel.Task
	err := r.db.WithContext(ctx).
		Preload("AssignedUser").
		Preload("CreatedUser").
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) List(ctx context.Context, filter task.Filter) ([]*taskDatamodel.Task, error) {
	var tasks []*taskDatamodel.Task
	q := r.db.WithContext(ctx).
		Preload("AssignedUser").
		Preload("CreatedUser")
	if filter.TeamID != nil {
		q = q.Where("team_id = ?", *filter.TeamID)
	}
	if filter.UserID != nil {
		q = q.Where("(assigned_to = ? OR created_by = ?)", *filter.UserID, *filter.UserID)
	}
	if filter.VisibleTo != nil {
		id := *filter.VisibleTo
		teams := r.db.Model(&teamDatamodel.TeamMember{}).Select("team_id").Where("user_id = ?", id)
		q = q.Where("(team_id IN (?) OR assigned_to = ? OR created_by = ?)", teams, id, id)
	}
	err := q.Order("created_at DESC").Order("id DESC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(ctx context.Context, id int64, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&taskDatamodel.Task{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *TaskRepository) DeleteCascade(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&taskDatamodel.Milestone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&taskDatamodel.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&taskDatamodel.Task{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}
