package role

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/task-tracker/internal"
	roleDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/role"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*roleDatamodel.Role, error)
	GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	Create(ctx context.Context, role *roleDatamodel.Role) error
	Update(ctx context.Context, role *roleDatamodel.Role) error
	Delete(ctx context.Context, id int64) error
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

// List returns roles ordered by level descending, then name.
func (s *Service) List(ctx context.Context) ([]*Role, error) {
	dataRoles, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list roles", "error", err)
		return nil, errors.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, 0, len(dataRoles))
	for _, r := range dataRoles {
		roles = append(roles, FromDataModel(r))
	}
	return roles, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get role", "role_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get role", err)
	}
	if r == nil {
		return nil, errors.ErrRoleNotFound
	}
	return FromDataModel(r), nil
}

func (s *Service) GetByName(ctx context.Context, name string) (*Role, error) {
	r, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get role by name", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to get role", err)
	}
	if r == nil {
		return nil, errors.ErrRoleNotFound
	}
	return FromDataModel(r), nil
}

func (s *Service) Create(ctx context.Context, actor Actor, dto CreateRoleDTO) (*Role, error) {
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "role creation denied", "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	perms, _ := permission.Parse(dto.Permissions)

	if err := s.ensureNameFree(ctx, dto.Name, 0); err != nil {
		return nil, err
	}

	createdBy := actor.UserID
	r := &Role{
		Name:        dto.Name,
		Description: dto.Description,
		Permissions: perms,
		Level:       dto.Level,
		CreatedBy:   &createdBy,
	}

	data := ToDataModel(r)
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to create role", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create role", err)
	}

	s.logger.InfoContext(ctx, "role created", "role_id", data.ID, "name", data.Name, "level", data.Level, "created_by", actor.UserID)
	return FromDataModel(data), nil
}

// Update applies the non-nil fields of dto. System roles keep their name.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, dto UpdateRoleDTO) (*Role, error) {
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "role update denied", "user_id", actor.UserID, "role_id", id)
		return nil, errors.ErrInsufficientPrivilege
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return existing, nil
	}

	if dto.Name != nil && *dto.Name != existing.Name {
		if existing.IsSystem() {
			return nil, errors.NewProtectedResourceError("System roles cannot be renamed", errors.ErrCodeProtectedRole)
		}
		if err := s.ensureNameFree(ctx, *dto.Name, id); err != nil {
			return nil, err
		}
		existing.Name = *dto.Name
	}
	if dto.Description != nil {
		existing.Description = dto.Description
	}
	if dto.Level != nil {
		existing.Level = *dto.Level
	}
	if len(dto.Permissions) > 0 {
		perms, _ := permission.Parse(dto.Permissions)
		existing.Permissions = perms
	}

	data := ToDataModel(existing)
	if err := s.repo.Update(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to update role", "role_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update role", err)
	}

	s.logger.InfoContext(ctx, "role updated", "role_id", id, "updated_by", actor.UserID)
	return FromDataModel(data), nil
}

// Delete removes a custom role. System roles are rejected with a protected resource error.
func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsAdminEligible() {
		s.logger.WarnContext(ctx, "role deletion denied", "user_id", actor.UserID, "role_id", id)
		return errors.ErrInsufficientPrivilege
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem() {
		s.logger.WarnContext(ctx, "attempt to delete system role", "role_id", id, "name", existing.Name, "user_id", actor.UserID)
		return errors.ErrProtectedRole
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete role", "role_id", id, "error", err)
		return errors.NewInternalError("failed to delete role", err)
	}

	s.logger.InfoContext(ctx, "role deleted", "role_id", id, "name", existing.Name, "deleted_by", actor.UserID)
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	found, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check role name", "name", name, "error", err)
		return errors.NewInternalError("failed to check role name", err)
	}
	if found != nil && found.ID != selfID {
		return errors.NewConflictError("A role with this name already exists", errors.ErrCodeDuplicateRole)
	}
	return nil
}
