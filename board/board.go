// Package board derives the Kanban and calendar projections from the task
// store and translates drag-and-drop gestures into status mutations. All
// derivations are pure functions over the task collection and the session;
// nothing here caches derived state.
package board

import (
	"taskflow-client/domain"
	"taskflow-client/session"
)

// Columns is the three-column Kanban projection of the selected project.
type Columns struct {
	Todo       []domain.Task
	InProgress []domain.Task
	Done       []domain.Task
}

// Column returns the bucket for a status.
func (c Columns) Column(s domain.Status) []domain.Task {
	switch s {
	case domain.StatusTodo:
		return c.Todo
	case domain.StatusInProgress:
		return c.InProgress
	case domain.StatusDone:
		return c.Done
	}
	return nil
}

// Derive buckets the tasks by status under the session's visibility rule:
// admins see every task, members only the tasks assigned to them. The filter
// is applied on every call rather than cached, so it stays correct if role
// or assignment change mid-session.
func Derive(tasks []domain.Task, sess session.Session) Columns {
	var cols Columns
	for _, t := range tasks {
		if !sess.CanSeeTask(t) {
			continue
		}
		switch t.Status {
		case domain.StatusTodo:
			cols.Todo = append(cols.Todo, t)
		case domain.StatusInProgress:
			cols.InProgress = append(cols.InProgress, t)
		case domain.StatusDone:
			cols.Done = append(cols.Done, t)
		}
	}
	return cols
}
