package postgres

import (
	"context"
	"errors"

	teamDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/team"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const teamWithCountsSelect = `teams.*,
	(SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = teams.id) AS member_count,
	(SELECT COUNT(*) FROM tasks t WHERE t.team_id = teams.id) AS task_count`

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) team.RepositoryAPI {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context, userID *int64) ([]*teamDatamodel.TeamWithCounts, error) {
	var rows []*teamDatamodel.TeamWithCounts
	q := r.db.WithContext(ctx).Table("teams").Select(teamWithCountsSelect)
	if userID != nil {
		q = q.Where("teams.created_by = ? OR teams.id IN (SELECT team_id FROM team_members WHERE user_id = ?)", *userID, *userID)
	}
	err := q.Order("teams.created_at DESC").Order("teams.id DESC").Find(&rows).Error
	return rows, err
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*teamDatamodel.TeamWithCounts, error) {
	var rows []*teamDatamodel.TeamWithCounts
	err := r.db.WithContext(ctx).Table("teams").Select(teamWithCountsSelect).
		Where("teams.id = ?", id).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *TeamRepository) CreateWithOwner(ctx context.Context, t *teamDatamodel.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return upsertMember(tx, &teamDatamodel.TeamMember{
			TeamID: t.ID,
			UserID: t.CreatedBy,
			Role:   team.MemberRoleAdmin,
		})
	})
}

func (r *TeamRepository) Members(ctx context.Context, teamID int64) ([]*teamDatamodel.TeamMember, error) {
	var members []*teamDatamodel.TeamMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Order("id ASC").
		Find(&members).Error
	return members, err
}

func (r *TeamRepository) GetMember(ctx context.Context, teamID, userID int64) (*teamDatamodel.TeamMember, error) {
	var m teamDatamodel.TeamMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *TeamRepository) UpsertMember(ctx context.Context, m *teamDatamodel.TeamMember) error {
	return upsertMember(r.db.WithContext(ctx), m)
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&teamDatamodel.TeamMember{})
	return res.RowsAffected > 0, res.Error
}

func (r *TeamRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

// upsertMember keeps one row per (team_id, user_id); a repeat insert updates the team role.
func upsertMember(db *gorm.DB, m *teamDatamodel.TeamMember) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(m).Error
}
