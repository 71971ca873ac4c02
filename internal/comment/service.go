package comment

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/task-tracker/internal"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/task"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *taskDatamodel.Comment) error
	GetByID(ctx context.Context, id int64) (*taskDatamodel.Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]*taskDatamodel.Comment, error)
}

type TaskAccess interface {
	AuthorizeRead(ctx context.Context, actor role.Actor, taskID int64) (*task.Task, error)
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

// Add posts a comment as the actor. Anyone who can read the task may comment.
func (s *Service) Add(ctx context.Context, actor role.Actor, taskID int64, dto CreateCommentDTO) (*Comment, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.tasks.AuthorizeRead(ctx, actor, taskID); err != nil {
		return nil, err
	}

	data := &taskDatamodel.Comment{TaskID: taskID, UserID: actor.UserID, Content: dto.Content}
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to add comment", "task_id", taskID, "user_id", actor.UserID, "error", err)
		return nil, errors.NewInternalError("failed to add comment", err)
	}

	stored, err := s.repo.GetByID(ctx, data.ID)
	if err != nil || stored == nil {
		s.logger.WarnContext(ctx, "failed to reload comment", "comment_id", data.ID, "error", err)
		return FromDataModel(data), nil
	}

	s.logger.InfoContext(ctx, "comment added", "comment_id", data.ID, "task_id", taskID)
	return FromDataModel(stored), nil
}

// List returns the task's comments newest first.
func (s *Service) List(ctx context.Context, actor role.Actor, taskID int64) ([]*Comment, error) {
	if _, err := s.tasks.AuthorizeRead(ctx, actor, taskID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list comments", "task_id", taskID, "error", err)
		return nil, errors.NewInternalError("failed to list comments", err)
	}

	comments := make([]*Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, FromDataModel(row))
	}
	return comments, nil
}
