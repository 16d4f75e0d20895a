package domain

// Status is the lifecycle state of a task on the board.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// StatusLabels maps each status to its column heading.
var StatusLabels = map[Status]string{
	StatusTodo:       "To Do",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
}

// Valid reports whether s is one of the known board statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task represents a single board item. A task belongs to exactly one project;
// the Project field is stable after creation and re-parenting is not supported.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	// DueDate is an ISO date (2006-01-02); empty when the task has no due date.
	DueDate  string `json:"dueDate,omitempty"`
	Project  string `json:"project"`
	Assignee string `json:"assignee,omitempty"`
}

// TaskFields carries the mutable fields of a task for create and update calls.
type TaskFields struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
	Project     string `json:"project"`
	Assignee    string `json:"assignee,omitempty"`
}

// Fields extracts the mutable fields of t, suitable as an update payload.
func (t Task) Fields() TaskFields {
	return TaskFields{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Project:     t.Project,
		Assignee:    t.Assignee,
	}
}

// ValidateTask checks the fields required before a task create or update is
// sent to the authority.
func ValidateTask(f TaskFields) error {
	if isBlank(f.Title) {
		return &ValidationError{Field: "title", Message: "Task title is required"}
	}
	if isBlank(f.Project) {
		return &ValidationError{Field: "project", Message: "Project is required"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: "Unknown task status"}
	}
	return nil
}
