package tasks

import (
	"strings"
	"time"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
)

// Filter narrows a task listing. Status and Search combine with AND.
type Filter struct {
	Status *enums.TaskStatus
	Search string
}

func (f Filter) matches(t *models.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			return false
		}
	}
	return true
}

// IsOverdue reports whether the task's due date falls strictly before today.
// Comparison is at day granularity; the optional due time never factors in.
// DONE tasks are never overdue.
func IsOverdue(t *models.Task, today time.Time) bool {
	if t.DueDate == nil || t.Status == enums.TaskStatusDone {
		return false
	}
	due := truncateToDay(*t.DueDate)
	return due.Before(truncateToDay(today))
}

// NextUp picks the task the family should look at first: the earliest due
// date among tasks that are not DONE and have one. Ties keep input order.
func NextUp(ts []models.Task) *models.Task {
	var best *models.Task
	for i := range ts {
		t := &ts[i]
		if t.Status == enums.TaskStatusDone || t.DueDate == nil {
			continue
		}
		if best == nil || truncateToDay(*t.DueDate).Before(truncateToDay(*best.DueDate)) {
			best = t
		}
	}
	return best
}

// BuildListView groups tasks one level deep and applies the filter with
// match-propagation: a parent whose own fields fail the filter still appears
// when one of its sub-tasks matches, so the match is never orphaned.
func BuildListView(ts []models.Task, filter Filter, today time.Time) TaskListView {
	childrenByParent := map[string][]*models.Task{}
	var parents []*models.Task

	for i := range ts {
		t := &ts[i]
		if t.ParentID != nil {
			key := t.ParentID.String()
			childrenByParent[key] = append(childrenByParent[key], t)
			continue
		}
		parents = append(parents, t)
	}

	groups := make([]TaskGroup, 0, len(parents))
	for _, parent := range parents {
		children := childrenByParent[parent.ID.String()]

		var matched []TaskDTO
		for _, child := range children {
			if filter.matches(child) {
				matched = append(matched, *FromModel(child, today))
			}
		}

		if !filter.matches(parent) && len(matched) == 0 {
			continue
		}

		groups = append(groups, TaskGroup{
			Task:     *FromModel(parent, today),
			SubTasks: matched,
		})
	}

	view := TaskListView{Groups: groups}
	if next := NextUp(ts); next != nil {
		view.NextUp = FromModel(next, today)
	}
	return view
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
