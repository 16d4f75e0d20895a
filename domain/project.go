package domain

// Project is the authority-owned grouping of tasks. The client holds a cached
// copy; membership is tracked by the authority and surfaced via ProjectMember.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProjectFields carries the mutable fields of a project for create and update
// calls.
type ProjectFields struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProjectMember is a user projected into one project's membership list.
type ProjectMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ValidateProject checks the fields required before a project create or
// update is sent to the authority.
func ValidateProject(f ProjectFields) error {
	if isBlank(f.Name) {
		return &ValidationError{Field: "name", Message: "Project name is required"}
	}
	return nil
}
