package user

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/task-tracker/internal"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/role"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	ListWithRoles(ctx context.Context) ([]*userDatamodel.User, error)
	UpdateRole(ctx context.Context, userID int64, roleID int64, roleName string) error
}

type RoleLookup interface {
	Get(ctx context.Context, id int64) (*role.Role, error)
}

type Service struct {
	repo   RepositoryAPI
	roles  RoleLookup
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, roles RoleLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		roles:  roles,
		logger: logger,
	}
}

// GetByID loads the user together with its role details.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get user", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

func (s *Service) ListWithRoles(ctx context.Context, actor role.Actor) ([]*User, error) {
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "user listing denied", "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}

	rows, err := s.repo.ListWithRoles(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list users", "error", err)
		return nil, errors.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) UpdateRole(ctx context.Context, actor role.Actor, userID, roleID int64) (*User, error) {
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "role assignment denied", "user_id", actor.UserID, "target_user_id", userID)
		return nil, errors.ErrInsufficientPrivilege
	}

	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	r, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRole(ctx, userID, r.ID, r.Name); err != nil {
		s.logger.ErrorContext(ctx, "failed to update user role", "target_user_id", userID, "role_id", roleID, "error", err)
		return nil, errors.NewInternalError("failed to update user role", err)
	}

	s.logger.InfoContext(ctx, "user role updated", "target_user_id", userID, "role", r.Name, "level", r.Level, "updated_by", actor.UserID)
	return s.GetByID(ctx, userID)
}
