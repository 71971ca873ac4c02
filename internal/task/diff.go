package task

import (
	"strconv"
)

// Change is one field whose stored value differs from the requested one.
// Old and New are the history-log string forms; nil means no value.
type Change struct {
	Field string
	Old   *string
	New   *string
}

// Diff compares the user-editable fields of two versions of a task, in a fixed field order.
func Diff(before, after *Task) []Change {
	var changes []Change
	add := func(field string, old, new *string) {
		if equalPtr(old, new) {
			return
		}
		changes = append(changes, Change{Field: field, Old: old, New: new})
	}

	add("title", &before.Title, &after.Title)
	add("description", before.Description, after.Description)
	add("status", &before.Status, &after.Status)
	add("priority", &before.Priority, &after.Priority)
	add("assigned_to", idString(before.AssignedTo), idString(after.AssignedTo))
	add("due_date", before.DueDate, after.DueDate)

	return changes
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	s := strconv.FormatInt(*id, 10)
	return &s
}
