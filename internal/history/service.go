package history

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/task-tracker/internal"
	taskDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/task-tracker/internal/core/events"
)

type RepositoryAPI interface {
	Insert(ctx context.Context, rows []*taskDatamodel.History) error
	ListByTask(ctx context.Context, taskID int64) ([]*taskDatamodel.History, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends entries in a single insert. Rows are never updated or removed.
func (s *Service) Record(ctx context.Context, entries []events.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]*taskDatamodel.History, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ToDataModel(e))
	}

	if err := s.repo.Insert(ctx, rows); err != nil {
		s.logger.ErrorContext(ctx, "failed to record task history", "task_id", entries[0].TaskID, "entries", len(entries), "error", err)
		return errors.NewInternalError("failed to record task history", err)
	}
	return nil
}

// ListByTask returns the task's audit trail, newest first. It works for deleted tasks too.
func (s *Service) ListByTask(ctx context.Context, taskID int64) ([]*Entry, error) {
	rows, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list task history", "task_id", taskID, "error", err)
		return nil, errors.NewInternalError("failed to list task history", err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, FromDataModel(row))
	}
	return entries, nil
}
