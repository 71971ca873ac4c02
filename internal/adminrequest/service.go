package adminrequest

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/task-tracker/internal"
	adminRequestDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/adminrequest"
	"github.com/frahmantamala/task-tracker/internal/core/events"
	"github.com/frahmantamala/task-tracker/internal/role"
)

type RepositoryAPI interface {
	Create(ctx context.Context, req *adminRequestDatamodel.AdminRequest) error
	GetByID(ctx context.Context, id int64) (*adminRequestDatamodel.AdminRequest, error)
	List(ctx context.Context, status *string) ([]*adminRequestDatamodel.AdminRequest, error)
	Review(ctx context.Context, id int64, status string, reviewedBy int64, reviewedAt time.Time) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit stores a new pending request. Repeat submissions from one email are kept as separate rows.
func (s *Service) Submit(ctx context.Context, dto SubmitDTO) (*AdminRequest, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	data := &adminRequestDatamodel.AdminRequest{
		Email:  dto.Email,
		Name:   dto.Name,
		Reason: dto.Reason,
		Status: StatusPending,
	}
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to submit admin request", "email", dto.Email, "error", err)
		return nil, errors.NewInternalError("failed to submit admin request", err)
	}

	s.logger.InfoContext(ctx, "admin request submitted", "request_id", data.ID, "email", data.Email)
	s.publish(ctx, events.NewAdminRequestSubmittedEvent(data.ID, data.Email, data.Name, data.Reason, data.RequestedAt))

	return FromDataModel(data), nil
}

// List returns requests newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, actor role.Actor, status *string) ([]*AdminRequest, error) {
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "admin request listing denied", "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}
	if status != nil {
		if err := validateStatusFilter(*status); err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.List(ctx, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list admin requests", "error", err)
		return nil, errors.NewInternalError("failed to list admin requests", err)
	}

	requests := make([]*AdminRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, FromDataModel(row))
	}
	return requests, nil
}

// Review records the decision. A request that was already decided is overwritten.
func (s *Service) Review(ctx context.Context, actor role.Actor, id int64, dto ReviewDTO) (*AdminRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "admin request review denied", "request_id", id, "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}

	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load admin request", "request_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load admin request", err)
	}
	if previous == nil {
		return nil, errors.ErrAdminRequestNotFound
	}
	if previous.Status != StatusPending {
		s.logger.WarnContext(ctx, "overwriting decided admin request",
			"request_id", id,
			"previous_status", previous.Status,
			"status", dto.Status,
			"user_id", actor.UserID)
	}

	reviewedAt := time.Now().UTC()
	found, err := s.repo.Review(ctx, id, dto.Status, actor.UserID, reviewedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to review admin request", "request_id", id, "error", err)
		return nil, errors.NewInternalError("failed to review admin request", err)
	}
	if !found {
		return nil, errors.ErrAdminRequestNotFound
	}

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load admin request", err)
	}
	if stored == nil {
		return nil, errors.ErrAdminRequestNotFound
	}

	s.logger.InfoContext(ctx, "admin request reviewed", "request_id", id, "status", dto.Status, "reviewed_by", actor.UserID)

	reviewer := ""
	if stored.ReviewerName != nil {
		reviewer = *stored.ReviewerName
	}
	s.publish(ctx, events.NewAdminRequestReviewedEvent(stored.ID, stored.Email, stored.Name, stored.Status, reviewer, reviewedAt))

	return FromDataModel(stored), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish admin request event", "event_type", event.EventType(), "error", err)
	}
}
