package analytics

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/task-tracker/internal"
)

type Reader interface {
	TaskFacts(ctx context.Context, scope Scope) ([]TaskFact, error)
	TeamFacts(ctx context.Context) ([]TeamFact, error)
}

type Service struct {
	reader Reader
	now    func() time.Time
	logger *slog.Logger
}

func NewService(reader Reader, logger *slog.Logger) *Service {
	return &Service{
		reader: reader,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// WithClock replaces the clock used for overdue checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) TaskAnalytics(ctx context.Context, scope Scope) (*TaskAnalytics, error) {
	facts, err := s.reader.TaskFacts(ctx, scope)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load task facts", "error", err)
		return nil, errors.NewInternalError("failed to load task analytics", err)
	}

	out := SummarizeTasks(facts, s.now())
	return &out, nil
}

func (s *Service) TeamAnalytics(ctx context.Context) ([]TeamAnalytics, error) {
	teams, err := s.reader.TeamFacts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load team facts", "error", err)
		return nil, errors.NewInternalError("failed to load team analytics", err)
	}

	facts, err := s.reader.TaskFacts(ctx, Scope{})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load task facts", "error", err)
		return nil, errors.NewInternalError("failed to load team analytics", err)
	}

	return SummarizeTeams(teams, facts), nil
}

func (s *Service) UserAnalytics(ctx context.Context, teamID *int64) ([]UserAnalytics, error) {
	facts, err := s.reader.TaskFacts(ctx, Scope{TeamID: teamID})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load task facts", "error", err, "team_id", teamID)
		return nil, errors.NewInternalError("failed to load user analytics", err)
	}

	return SummarizeUsers(facts), nil
}
