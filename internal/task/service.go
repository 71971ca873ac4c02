package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/common/dateonly"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/history"
	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/team"
)

type RepositoryAPI interface {
	Create(ctx context.Context, t *taskDatamodel.Task) error
	GetByID(ctx context.Context, id int64) (*taskDatamodel.Task, error)
	List(ctx context.Context, filter Filter) ([]*taskDatamodel.Task, error)
	Update(ctx context.Context, id int64, columns map[string]interface{}) error
	// DeleteCascade removes the task with its milestones and comments in one transaction.
	DeleteCascade(ctx context.Context, id int64) (bool, error)
}

type TeamDirectory interface {
	Get(ctx context.Context, id int64) (*team.Team, error)
	IsMember(ctx context.Context, teamID, userID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	teams     TeamDirectory
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, teams TeamDirectory, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		teams:     teams,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get task", "task_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get task", err)
	}
	if row == nil {
		return nil, errors.ErrTaskNotFound
	}
	return FromDataModel(row), nil
}

// View returns the task when the actor may read it.
func (s *Service) View(ctx context.Context, actor role.Actor, id int64) (*Task, error) {
	return s.AuthorizeRead(ctx, actor, id)
}

// List returns tasks newest first. With both filters set it returns the team's
// tasks the user created or is assigned to.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Task, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list tasks", "error", err)
		return nil, errors.NewInternalError("failed to list tasks", err)
	}

	tasks := make([]*Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, FromDataModel(row))
	}
	return tasks, nil
}

// ListFor returns the tasks the actor may read. Roles granting tasks.read see
// everything. Others must belong to a filtered team, and an unfiltered list
// is limited to their own teams and tasks they created or are assigned to.
func (s *Service) ListFor(ctx context.Context, actor role.Actor, filter Filter) ([]*Task, error) {
	if actor.Can(permission.ResourceTasks, permission.ActionRead) {
		return s.List(ctx, filter)
	}

	if filter.TeamID == nil {
		filter.VisibleTo = &actor.UserID
		return s.List(ctx, filter)
	}

	if _, err := s.teams.Get(ctx, *filter.TeamID); err != nil {
		return nil, err
	}
	member, err := s.teams.IsMember(ctx, *filter.TeamID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		s.logger.WarnContext(ctx, "task list denied", "team_id", *filter.TeamID, "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}
	return s.List(ctx, filter)
}

func (s *Service) Create(ctx context.Context, actor role.Actor, dto CreateTaskDTO) (*Task, error) {
	dto.Normalize()
	if err := dto.Validate(actor.UserID); err != nil {
		return nil, err
	}

	if _, err := s.teams.Get(ctx, dto.TeamID); err != nil {
		return nil, err
	}
	if !actor.Can(permission.ResourceTasks, permission.ActionCreate) {
		member, err := s.teams.IsMember(ctx, dto.TeamID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !member {
			s.logger.WarnContext(ctx, "task creation denied", "team_id", dto.TeamID, "user_id", actor.UserID)
			return nil, errors.ErrInsufficientPrivilege
		}
	}

	if err := s.checkAssignee(ctx, dto.AssignedTo); err != nil {
		return nil, err
	}

	dueDate, err := dateonly.ParsePtr(dto.DueDate)
	if err != nil {
		return nil, errors.NewValidationFieldError("due_date", "due_date must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}

	data := &taskDatamodel.Task{
		Title:       dto.Title,
		Description: dto.Description,
		Status:      dto.Status,
		Priority:    dto.Priority,
		AssignedTo:  dto.AssignedTo,
		CreatedBy:   actor.UserID,
		TeamID:      dto.TeamID,
		DueDate:     dueDate,
	}
	if data.Status == StatusCompleted {
		now := s.now()
		data.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to create task", "team_id", dto.TeamID, "error", err)
		return nil, errors.NewInternalError("failed to create task", err)
	}

	s.logger.InfoContext(ctx, "task created", "task_id", data.ID, "team_id", data.TeamID, "created_by", actor.UserID)

	created := fmt.Sprintf("Task %q created", data.Title)
	s.recordHistory(ctx, data.ID, events.HistoryEntry{
		TaskID:   data.ID,
		UserID:   actor.UserID,
		Action:   history.ActionCreated,
		NewValue: &created,
	})

	return s.Get(ctx, data.ID)
}

// Update applies the present fields. When nothing differs from the stored task
// it returns the task unchanged and writes nothing.
func (s *Service) Update(ctx context.Context, actor role.Actor, id int64, dto UpdateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.AuthorizeWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return current, nil
	}

	next := dto.Apply(current)
	changes := Diff(current, next)
	if len(changes) == 0 {
		return current, nil
	}

	for _, c := range changes {
		if c.Field == "assigned_to" {
			if err := s.checkAssignee(ctx, next.AssignedTo); err != nil {
				return nil, err
			}
		}
	}

	columns, err := s.columnsFor(next, changes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, columns); err != nil {
		s.logger.ErrorContext(ctx, "failed to update task", "task_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update task", err)
	}

	entries := make([]events.HistoryEntry, 0, len(changes))
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, events.HistoryEntry{
			TaskID:   id,
			UserID:   actor.UserID,
			Action:   history.UpdatedAction(c.Field),
			OldValue: c.Old,
			NewValue: c.New,
		})
		fields = append(fields, c.Field)
	}

	s.logger.InfoContext(ctx, "task updated", "task_id", id, "fields", fields, "user_id", actor.UserID)
	s.recordHistory(ctx, id, entries...)

	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor role.Actor, id int64) error {
	current, err := s.AuthorizeWrite(ctx, actor, id)
	if err != nil {
		return err
	}

	deleted := "Task deleted"
	s.recordHistory(ctx, id, events.HistoryEntry{
		TaskID:   id,
		UserID:   actor.UserID,
		Action:   history.ActionDeleted,
		OldValue: &current.Title,
		NewValue: &deleted,
	})

	found, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete task", "task_id", id, "error", err)
		return errors.NewInternalError("failed to delete task", err)
	}
	if !found {
		return errors.ErrTaskNotFound
	}

	s.logger.InfoContext(ctx, "task deleted", "task_id", id, "user_id", actor.UserID)
	return nil
}

// columnsFor maps changed fields to store columns. A status change always
// rewrites completed_at so it is set exactly when the status is Completed.
func (s *Service) columnsFor(after *Task, changes []Change) (map[string]interface{}, error) {
	columns := make(map[string]interface{}, len(changes)+2)
	for _, c := range changes {
		switch c.Field {
		case "title":
			columns[c.Field] = after.Title
		case "description":
			columns[c.Field] = after.Description
		case "status":
			columns[c.Field] = after.Status
		case "priority":
			columns[c.Field] = after.Priority
		case "assigned_to":
			columns[c.Field] = after.AssignedTo
		case "due_date":
			due, err := dateonly.ParsePtr(after.DueDate)
			if err != nil {
				return nil, errors.NewValidationFieldError("due_date", "due_date must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
			}
			columns[c.Field] = due
		}
	}

	if _, ok := columns["status"]; ok {
		columns["completed_at"] = nil
		if after.IsCompleted() {
			columns["completed_at"] = s.now()
		}
	}
	columns["updated_at"] = s.now()
	return columns, nil
}

func (s *Service) checkAssignee(ctx context.Context, assignee *int64) error {
	if assignee == nil {
		return nil
	}
	exists, err := s.teams.UserExists(ctx, *assignee)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrUserNotFound
	}
	return nil
}

// recordHistory hands entries to the history writer. Entries are stamped now,
// so the trail keeps the order of changes even when writes land out of order.
// Failures are logged only.
func (s *Service) recordHistory(ctx context.Context, taskID int64, entries ...events.HistoryEntry) {
	if s.publisher == nil || len(entries) == 0 {
		return
	}
	at := s.now()
	for i := range entries {
		if entries[i].OccurredAt.IsZero() {
			entries[i].OccurredAt = at
		}
	}
	if err := s.publisher.Publish(ctx, events.NewTaskHistoryEvent(taskID, entries)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish task history", "task_id", taskID, "error", err)
	}
}
