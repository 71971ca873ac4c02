// Package analytics derives read-only statistics from task, team and user rows.
// The reader loads plain facts; every count and rate is computed in Go.
package analytics

import (
	"math"
	"time"
)

// MostActiveFallback names the most active user of a team with no assigned tasks.
const MostActiveFallback = "N/A"

// Scope narrows task analytics to a team or to a user's tasks. Empty means all tasks.
type Scope struct {
	TeamID *int64
	UserID *int64
}

// TaskFact is one task row as read for aggregation.
type TaskFact struct {
	ID           int64      `db:"id"`
	TeamID       int64      `db:"team_id"`
	AssignedTo   *int64     `db:"assigned_to"`
	AssigneeName *string    `db:"assignee_name"`
	CreatedBy    int64      `db:"created_by"`
	Status       string     `db:"status"`
	DueDate      *time.Time `db:"due_date"`
	CompletedAt  *time.Time `db:"completed_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// TeamFact is one team with its membership count.
type TeamFact struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	MemberCount int64  `db:"member_count"`
}

type TaskAnalytics struct {
	TotalTasks            int `json:"totalTasks"`
	CompletedTasks        int `json:"completedTasks"`
	InProgressTasks       int `json:"inProgressTasks"`
	NotStartedTasks       int `json:"notStartedTasks"`
	OverdueTasks          int `json:"overdueTasks"`
	CompletionRate        int `json:"completionRate"`
	AverageCompletionTime int `json:"averageCompletionTime"`
}

type TeamAnalytics struct {
	TeamID         int64  `json:"teamId"`
	TeamName       string `json:"teamName"`
	MemberCount    int    `json:"memberCount"`
	TaskCount      int    `json:"taskCount"`
	CompletionRate int    `json:"completionRate"`
	MostActiveUser string `json:"mostActiveUser"`
}

type UserAnalytics struct {
	UserID                int64  `json:"userId"`
	UserName              string `json:"userName"`
	AssignedTasks         int    `json:"assignedTasks"`
	CompletedTasks        int    `json:"completedTasks"`
	CompletionRate        int    `json:"completionRate"`
	AverageCompletionTime int    `json:"averageCompletionTime"`
}

// CompletionRate is completed/total as a rounded percentage, 0 for no tasks.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// AverageDays is the rounded mean of completed_at - created_at in days over
// the tasks that have a completion time.
func AverageDays(tasks []TaskFact) int {
	var (
		sum   float64
		count int
	)
	for _, t := range tasks {
		if t.CompletedAt == nil || t.CreatedAt.IsZero() {
			continue
		}
		sum += t.CompletedAt.Sub(t.CreatedAt).Hours() / 24
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}
