package milestone

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/dateonly"
	"github.com/frahmantamala/task-tracker/internal/core/common/patch"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/task"
)

type RepositoryAPI interface {
	ListByTask(ctx context.Context, taskID int64) ([]*taskDatamodel.Milestone, error)
	GetByID(ctx context.Context, id int64) (*taskDatamodel.Milestone, error)
	// Append stores m with order_index set to the task's current milestone count.
	Append(ctx context.Context, m *taskDatamodel.Milestone) error
	Update(ctx context.Context, id int64, columns map[string]interface{}) error
	// UpdateOrder writes the given order_index values in one transaction.
	UpdateOrder(ctx context.Context, taskID int64, indices map[int64]int) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// TaskAccess resolves the parent task and the caller's rights on it.
type TaskAccess interface {
	AuthorizeRead(ctx context.Context, actor role.Actor, taskID int64) (*task.Task, error)
	AuthorizeWrite(ctx context.Context, actor role.Actor, taskID int64) (*task.Task, error)
}

type Service struct {
	repo   RepositoryAPI
	tasks  TaskAccess
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tasks TaskAccess, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tasks:  tasks,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, actor role.Actor, taskID int64) ([]*Milestone, error) {
	if _, err := s.tasks.AuthorizeRead(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.list(ctx, taskID)
}

// Add appends a milestone at the end of the task's list.
func (s *Service) Add(ctx context.Context, actor role.Actor, taskID int64, dto CreateMilestoneDTO) (*Milestone, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.tasks.AuthorizeWrite(ctx, actor, taskID); err != nil {
		return nil, err
	}

	due, err := dateonly.ParsePtr(dto.DueDate)
	if err != nil {
		return nil, errors.NewValidationFieldError("due_date", "due_date must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}

	data := &taskDatamodel.Milestone{TaskID: taskID, Title: dto.Title, DueDate: due}
	if err := s.repo.Append(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to add milestone", "task_id", taskID, "error", err)
		return nil, errors.NewInternalError("failed to add milestone", err)
	}

	s.logger.InfoContext(ctx, "milestone added", "milestone_id", data.ID, "task_id", taskID, "order_index", data.OrderIndex)
	return FromDataModel(data), nil
}

// ApplyOrder renumbers the task's milestones to follow orderedIDs and returns the sorted list.
func (s *Service) ApplyOrder(ctx context.Context, actor role.Actor, taskID int64, dto OrderDTO) ([]*Milestone, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.tasks.AuthorizeWrite(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.applyOrder(ctx, taskID, dto.MilestoneIDs)
}

// Move drops a milestone onto another one's position.
func (s *Service) Move(ctx context.Context, actor role.Actor, milestoneID int64, dto MoveDTO) ([]*Milestone, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	moved, err := s.get(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.AuthorizeWrite(ctx, actor, moved.TaskID); err != nil {
		return nil, err
	}

	current, err := s.list(ctx, moved.TaskID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(current))
	for _, m := range current {
		ids = append(ids, m.ID)
	}
	if indexOf(ids, dto.TargetID) < 0 {
		return nil, errors.NewValidationFieldError("target_id", "target milestone does not belong to this task", errors.ErrCodeInvalidOrder)
	}

	return s.applyOrder(ctx, moved.TaskID, Reorder(ids, milestoneID, dto.TargetID))
}

// Toggle sets the completed flag. The milestone keeps its position.
func (s *Service) Toggle(ctx context.Context, actor role.Actor, id int64, completed bool) (*Milestone, error) {
	return s.Update(ctx, actor, id, UpdateMilestoneDTO{Completed: patch.Value(completed)})
}

func (s *Service) Update(ctx context.Context, actor role.Actor, id int64, dto UpdateMilestoneDTO) (*Milestone, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.AuthorizeWrite(ctx, actor, current.TaskID); err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return current, nil
	}

	columns := map[string]interface{}{"updated_at": time.Now().UTC()}
	if dto.Title.Set {
		columns["title"] = *dto.Title.Value
	}
	if dto.Completed.Set {
		columns["completed"] = *dto.Completed.Value
	}
	if dto.DueDate.Set {
		due, err := dateonly.ParsePtr(dto.DueDate.Value)
		if err != nil {
			return nil, errors.NewValidationFieldError("due_date", "due_date must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
		}
		columns["due_date"] = due
	}

	if err := s.repo.Update(ctx, id, columns); err != nil {
		s.logger.ErrorContext(ctx, "failed to update milestone", "milestone_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update milestone", err)
	}

	s.logger.InfoContext(ctx, "milestone updated", "milestone_id", id, "task_id", current.TaskID)
	return s.get(ctx, id)
}

// Delete removes the milestone. Siblings are not renumbered.
func (s *Service) Delete(ctx context.Context, actor role.Actor, id int64) error {
	current, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.tasks.AuthorizeWrite(ctx, actor, current.TaskID); err != nil {
		return err
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete milestone", "milestone_id", id, "error", err)
		return errors.NewInternalError("failed to delete milestone", err)
	}
	if !found {
		return errors.ErrMilestoneNotFound
	}

	s.logger.InfoContext(ctx, "milestone deleted", "milestone_id", id, "task_id", current.TaskID)
	return nil
}

func (s *Service) applyOrder(ctx context.Context, taskID int64, orderedIDs []int64) ([]*Milestone, error) {
	current, err := s.list(ctx, taskID)
	if err != nil {
		return nil, err
	}

	changes, err := IndexChanges(current, orderedIDs)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return current, nil
	}

	if err := s.repo.UpdateOrder(ctx, taskID, changes); err != nil {
		s.logger.ErrorContext(ctx, "failed to reorder milestones", "task_id", taskID, "error", err)
		return nil, errors.NewInternalError("failed to reorder milestones", err)
	}

	s.logger.InfoContext(ctx, "milestones reordered", "task_id", taskID, "changed", len(changes))
	return s.list(ctx, taskID)
}

func (s *Service) list(ctx context.Context, taskID int64) ([]*Milestone, error) {
	rows, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list milestones", "task_id", taskID, "error", err)
		return nil, errors.NewInternalError("failed to list milestones", err)
	}

	milestones := make([]*Milestone, 0, len(rows))
	for _, row := range rows {
		milestones = append(milestones, FromDataModel(row))
	}
	Sort(milestones)
	return milestones, nil
}

func (s *Service) get(ctx context.Context, id int64) (*Milestone, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get milestone", "milestone_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get milestone", err)
	}
	if row == nil {
		return nil, errors.ErrMilestoneNotFound
	}
	return FromDataModel(row), nil
}
