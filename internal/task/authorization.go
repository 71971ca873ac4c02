package task

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/task-tracker/internal"
	"github.com/frahmantamala/task-tracker/internal/core/permission"
	"github.com/frahmantamala/task-tracker/internal/role"
)

// CanWrite admits the task's creator, its assignee and roles granting tasks.update.
func CanWrite(actor role.Actor, t *Task) bool {
	if t.CreatedBy == actor.UserID || t.IsAssignedTo(actor.UserID) {
		return true
	}
	return actor.Can(permission.ResourceTasks, permission.ActionUpdate)
}

// AuthorizeWrite loads the task and checks write access. Milestone and comment
// changes go through here too.
func (s *Service) AuthorizeWrite(ctx context.Context, actor role.Actor, taskID int64) (*Task, error) {
	t, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(actor, t) {
		s.logger.WarnContext(ctx, "task write denied", "task_id", taskID, "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}
	return t, nil
}

// AuthorizeRead admits writers, members of the task's team and roles granting tasks.read.
func (s *Service) AuthorizeRead(ctx context.Context, actor role.Actor, taskID int64) (*Task, error) {
	t, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if CanWrite(actor, t) || actor.Can(permission.ResourceTasks, permission.ActionRead) {
		return t, nil
	}

	member, err := s.teams.IsMember(ctx, t.TeamID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		s.logger.WarnContext(ctx, "task read denied", "task_id", taskID, "user_id", actor.UserID)
		return nil, errors.ErrInsufficientPrivilege
	}
	return t, nil
}

// AuthorizeHistory admits readers of the task. Once the task is gone only roles
// granting tasks.read may see its trail.
func (s *Service) AuthorizeHistory(ctx context.Context, actor role.Actor, taskID int64) error {
	_, err := s.AuthorizeRead(ctx, actor, taskID)
	if !stderrors.Is(err, errors.ErrTaskNotFound) {
		return err
	}
	if actor.Can(permission.ResourceTasks, permission.ActionRead) {
		return nil
	}
	s.logger.WarnContext(ctx, "history of missing task denied", "task_id", taskID, "user_id", actor.UserID)
	return errors.ErrInsufficientPrivilege
}
