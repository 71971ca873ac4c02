package analytics

import (
	"sort"
	"time"

	"github.com/frahmantamala/task-tracker/internal/core/common/dateonly"
	"github.com/frahmantamala/task-tracker/internal/task"
)

// SummarizeTasks counts tasks per status. A task is overdue when its due date
// is before today and it is not Completed.
func SummarizeTasks(tasks []TaskFact, now time.Time) TaskAnalytics {
	today := dateonly.Today(now)
	out := TaskAnalytics{TotalTasks: len(tasks)}

	for _, t := range tasks {
		switch t.Status {
		case task.StatusCompleted:
			out.CompletedTasks++
		case task.StatusInProgress:
			out.InProgressTasks++
		case task.StatusNotStarted:
			out.NotStartedTasks++
		}
		if t.Status != task.StatusCompleted && t.DueDate != nil && t.DueDate.Before(today) {
			out.OverdueTasks++
		}
	}

	out.CompletionRate = CompletionRate(out.CompletedTasks, out.TotalTasks)
	out.AverageCompletionTime = AverageDays(tasks)
	return out
}

// SummarizeTeams builds one entry per team ordered by task count, largest first.
// The most active user is the assignee with the most tasks in the team; the
// first one seen wins a tie.
func SummarizeTeams(teams []TeamFact, tasks []TaskFact) []TeamAnalytics {
	byTeam := make(map[int64][]TaskFact, len(teams))
	for _, t := range tasks {
		byTeam[t.TeamID] = append(byTeam[t.TeamID], t)
	}

	out := make([]TeamAnalytics, 0, len(teams))
	for _, team := range teams {
		teamTasks := byTeam[team.ID]
		completed := 0
		for _, t := range teamTasks {
			if t.Status == task.StatusCompleted {
				completed++
			}
		}
		out = append(out, TeamAnalytics{
			TeamID:         team.ID,
			TeamName:       team.Name,
			MemberCount:    int(team.MemberCount),
			TaskCount:      len(teamTasks),
			CompletionRate: CompletionRate(completed, len(teamTasks)),
			MostActiveUser: mostActive(teamTasks),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TaskCount > out[j].TaskCount
	})
	return out
}

// SummarizeUsers builds one entry per assignee ordered by assigned count, largest first.
// Users without assigned tasks are left out.
func SummarizeUsers(tasks []TaskFact) []UserAnalytics {
	var order []int64
	byUser := make(map[int64][]TaskFact)
	names := make(map[int64]string)

	for _, t := range tasks {
		if t.AssignedTo == nil {
			continue
		}
		id := *t.AssignedTo
		if _, ok := byUser[id]; !ok {
			order = append(order, id)
		}
		byUser[id] = append(byUser[id], t)
		if t.AssigneeName != nil {
			names[id] = *t.AssigneeName
		}
	}

	out := make([]UserAnalytics, 0, len(order))
	for _, id := range order {
		assigned := byUser[id]
		completed := 0
		for _, t := range assigned {
			if t.Status == task.StatusCompleted {
				completed++
			}
		}
		out = append(out, UserAnalytics{
			UserID:                id,
			UserName:              names[id],
			AssignedTasks:         len(assigned),
			CompletedTasks:        completed,
			CompletionRate:        CompletionRate(completed, len(assigned)),
			AverageCompletionTime: AverageDays(assigned),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssignedTasks > out[j].AssignedTasks
	})
	return out
}

func mostActive(tasks []TaskFact) string {
	var order []int64
	counts := make(map[int64]int)
	names := make(map[int64]string)
	for _, t := range tasks {
		if t.AssignedTo == nil {
			continue
		}
		id := *t.AssignedTo
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
		if t.AssigneeName != nil {
			names[id] = *t.AssigneeName
		}
	}

	best, bestCount := int64(0), 0
	for _, id := range order {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	if bestCount == 0 || names[best] == "" {
		return MostActiveFallback
	}
	return names[best]
}
