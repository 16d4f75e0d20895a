package domain

import "strings"

// ValidationError reports input rejected before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
