package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/task-tracker/internal/analytics"
	"github.com/jmoiron/sqlx"
)

const taskFactsQuery = `
SELECT t.id, t.team_id, t.assigned_to, u.name AS assignee_name, t.created_by,
       t.status, t.due_date, t.completed_at, t.created_at
FROM tasks t
LEFT JOIN users u ON u.id = t.assigned_to`

const teamFactsQuery = `
SELECT t.id, t.name, COUNT(tm.user_id) AS member_count
FROM teams t
LEFT JOIN team_members tm ON tm.team_id = t.id
GROUP BY t.id, t.name
ORDER BY t.id`

type AnalyticsReader struct {
	db *sqlx.DB
}

func NewAnalyticsReader(db *sqlx.DB) analytics.Reader {
	return &AnalyticsReader{db: db}
}

func (r *AnalyticsReader) TaskFacts(ctx context.Context, scope analytics.Scope) ([]analytics.TaskFact, error) {
	var (
		where []string
		args  []interface{}
	)
	if scope.TeamID != nil {
		where = append(where, "t.team_id = ?")
		args = append(args, *scope.TeamID)
	}
	if scope.UserID != nil {
		where = append(where, "(t.assigned_to = ? OR t.created_by = ?)")
		args = append(args, *scope.UserID, *scope.UserID)
	}

	query := taskFactsQuery
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY t.id"

	var facts []analytics.TaskFact
	if err := r.db.SelectContext(ctx, &facts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select task facts: %w", err)
	}
	return facts, nil
}

func (r *AnalyticsReader) TeamFacts(ctx context.Context) ([]analytics.TeamFact, error) {
	var facts []analytics.TeamFact
	if err := r.db.SelectContext(ctx, &facts, teamFactsQuery); err != nil {
		return nil, fmt.Errorf("select team facts: %w", err)
	}
	return facts, nil
}
