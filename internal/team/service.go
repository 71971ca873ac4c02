package team

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/task-tracker/internal"
	teamDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/team"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/role"
)

type RepositoryAPI interface {
	List(ctx context.Context, userID *int64) ([]*teamDatamodel.TeamWithCounts, error)
	GetByID(ctx context.Context, id int64) (*teamDatamodel.TeamWithCounts, error)
	CreateWithOwner(ctx context.Context, team *teamDatamodel.Team) error
	Members(ctx context.Context, teamID int64) ([]*teamDatamodel.TeamMember, error)
	GetMember(ctx context.Context, teamID, userID int64) (*teamDatamodel.TeamMember, error)
	UpsertMember(ctx context.Context, member *teamDatamodel.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
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

// List returns the teams created or joined by userID, or every team when userID is nil.
func (s *Service) List(ctx context.Context, userID *int64) ([]*Team, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list teams", "error", err)
		return nil, errors.NewInternalError("failed to list teams", err)
	}

	teams := make([]*Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, FromDataModel(row))
	}
	return teams, nil
}

// UserTeams returns the teams the user created or joined.
func (s *Service) UserTeams(ctx context.Context, userID int64) ([]*Team, error) {
	return s.List(ctx, &userID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Team, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get team", "team_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get team", err)
	}
	if row == nil {
		return nil, errors.ErrTeamNotFound
	}
	return FromDataModel(row), nil
}

// Create stores the team and makes its creator a team admin in one transaction.
func (s *Service) Create(ctx context.Context, actor role.Actor, dto CreateTeamDTO) (*Team, error) {
	if !actor.CanCreateTeam() {
		s.logger.WarnContext(ctx, "team creation denied", "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}

	dto.Name = strings.TrimSpace(dto.Name)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	data := &teamDatamodel.Team{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.CreateWithOwner(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to create team", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create team", err)
	}

	s.logger.InfoContext(ctx, "team created", "team_id", data.ID, "created_by", actor.UserID)
	return s.Get(ctx, data.ID)
}

// Members lists the team's members, earliest first.
func (s *Service) Members(ctx context.Context, teamID int64) ([]*Member, error) {
	if _, err := s.Get(ctx, teamID); err != nil {
		return nil, err
	}

	rows, err := s.repo.Members(ctx, teamID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list team members", "team_id", teamID, "error", err)
		return nil, errors.NewInternalError("failed to list team members", err)
	}

	members := make([]*Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, MemberFromDataModel(row))
	}
	return members, nil
}

func (s *Service) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	m, err := s.repo.GetMember(ctx, teamID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check team membership", "team_id", teamID, "user_id", userID, "error", err)
		return false, errors.NewInternalError("failed to check team membership", err)
	}
	return m != nil, nil
}

func (s *Service) UserExists(ctx context.Context, userID int64) (bool, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check user", "user_id", userID, "error", err)
		return false, errors.NewInternalError("failed to check user", err)
	}
	return exists, nil
}

// AddMember inserts the member or updates the team role of an existing one.
func (s *Service) AddMember(ctx context.Context, actor role.Actor, teamID int64, dto AddMemberDTO) (*Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Role == "" {
		dto.Role = MemberRoleMember
	}

	if err := s.authorizeManage(ctx, actor, teamID); err != nil {
		return nil, err
	}

	exists, err := s.UserExists(ctx, dto.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.ErrUserNotFound
	}

	member := &teamDatamodel.TeamMember{TeamID: teamID, UserID: dto.UserID, Role: dto.Role}
	if err := s.repo.UpsertMember(ctx, member); err != nil {
		s.logger.ErrorContext(ctx, "failed to add team member", "team_id", teamID, "user_id", dto.UserID, "error", err)
		return nil, errors.NewInternalError("failed to add team member", err)
	}

	stored, err := s.repo.GetMember(ctx, teamID, dto.UserID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load team member", err)
	}

	s.logger.InfoContext(ctx, "team member saved", "team_id", teamID, "user_id", dto.UserID, "role", dto.Role, "by", actor.UserID)
	return MemberFromDataModel(stored), nil
}

func (s *Service) RemoveMember(ctx context.Context, actor role.Actor, teamID, userID int64) error {
	if err := s.authorizeManage(ctx, actor, teamID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveMember(ctx, teamID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to remove team member", "team_id", teamID, "user_id", userID, "error", err)
		return errors.NewInternalError("failed to remove team member", err)
	}
	if !removed {
		return errors.ErrUserNotFound
	}

	s.logger.InfoContext(ctx, "team member removed", "team_id", teamID, "user_id", userID, "by", actor.UserID)
	return nil
}

// authorizeManage admits the team creator, a team admin member or a role with teams.update.
func (s *Service) authorizeManage(ctx context.Context, actor role.Actor, teamID int64) error {
	t, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if t.CreatedBy == actor.UserID || actor.Can(permission.ResourceTeams, permission.ActionUpdate) {
		return nil
	}

	m, err := s.repo.GetMember(ctx, teamID, actor.UserID)
	if err != nil {
		return errors.NewInternalError("failed to check team membership", err)
	}
	if MemberFromDataModel(m).IsAdmin() {
		return nil
	}

	s.logger.WarnContext(ctx, "team membership change denied", "team_id", teamID, "user_id", actor.UserID)
	return errors.ErrInsufficientPrivilege
}
