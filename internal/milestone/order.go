package milestone

import (
	"fmt"
	"sort"

	errors "github.com/frahmantamala/task-tracker/internal"
)

// Reorder moves movedID into targetID's position and shifts the items in
// between by one. Unknown ids or moved == target return an unchanged copy.
func Reorder(current []int64, movedID, targetID int64) []int64 {
	out := append([]int64(nil), current...)

	from, to := indexOf(out, movedID), indexOf(out, targetID)
	if from < 0 || to < 0 || from == to {
		return out
	}

	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]int64{movedID}, out[to:]...)...)
	return out
}

// Sort orders milestones by order_index with id as the tie-break.
func Sort(ms []*Milestone) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].OrderIndex != ms[j].OrderIndex {
			return ms[i].OrderIndex < ms[j].OrderIndex
		}
		return ms[i].ID < ms[j].ID
	})
}

// IndexChanges maps each milestone to its position in orderedIDs and returns
// only the ids whose stored order_index differs. Milestones missing from
// orderedIDs keep their relative order after the listed ones.
func IndexChanges(existing []*Milestone, orderedIDs []int64) (map[int64]int, error) {
	byID := make(map[int64]*Milestone, len(existing))
	for _, m := range existing {
		byID[m.ID] = m
	}

	seen := make(map[int64]bool, len(orderedIDs))
	final := make([]int64, 0, len(existing))
	for _, id := range orderedIDs {
		if _, ok := byID[id]; !ok {
			return nil, errors.NewValidationError(fmt.Sprintf("milestone %d does not belong to this task", id), errors.ErrCodeInvalidOrder)
		}
		if seen[id] {
			return nil, errors.NewValidationError(fmt.Sprintf("milestone %d is listed twice", id), errors.ErrCodeInvalidOrder)
		}
		seen[id] = true
		final = append(final, id)
	}

	sorted := append([]*Milestone(nil), existing...)
	Sort(sorted)
	for _, m := range sorted {
		if !seen[m.ID] {
			final = append(final, m.ID)
		}
	}

	changes := make(map[int64]int)
	for i, id := range final {
		if byID[id].OrderIndex != i {
			changes[id] = i
		}
	}
	return changes, nil
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
