package board

import "taskflow-client/domain"

// Status colors for calendar entries.
const (
	colorTodo       = "#6b7280"
	colorInProgress = "#3b82f6"
	colorDone       = "#22c55e"
)

// CalendarEntry is one task projected onto the calendar.
type CalendarEntry struct {
	TaskID string
	Title  string
	Date   string
	Color  string
}

// Calendar maps every task with a due date to a colored calendar entry. It
// is a pure, stateless projection over the same task collection the board
// derives from.
func Calendar(tasks []domain.Task) []CalendarEntry {
	entries := make([]CalendarEntry, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == "" {
			continue
		}
		color := colorTodo
		switch t.Status {
		case domain.StatusInProgress:
			color = colorInProgress
		case domain.StatusDone:
			color = colorDone
		}
		entries = append(entries, CalendarEntry{
			TaskID: t.ID,
			Title:  t.Title,
			Date:   t.DueDate,
			Color:  color,
		})
	}
	return entries
}
