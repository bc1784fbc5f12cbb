package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTaskNameLen caps mined task names.
	MaxTaskNameLen = 50
	// MaxDescriptionLen caps mined task descriptions.
	MaxDescriptionLen = 500
	// MaxTasksPerManual caps how many tasks a single extraction may yield.
	MaxTasksPerManual = 10
)

// taskNameRegex allows word characters, spaces, and hyphens only.
var taskNameRegex = regexp.MustCompile(`^[\w \-]*$`)

// ValidateTaskCandidate checks a mined task against the field contracts.
func ValidateTaskCandidate(t TaskCandidate) error {
	name := strings.TrimSpace(t.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxTaskNameLen {
		return NewValidationError("task_name", t.Name, ErrInvalidTaskName)
	}
	if !taskNameRegex.MatchString(name) {
		return NewValidationError("task_name", t.Name, ErrInvalidTaskName)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return NewValidationError("description", truncate(t.Description, 40), ErrDescriptionLong)
	}
	if !ValidFrequencies[t.Frequency] {
		return NewValidationError("frequency", string(t.Frequency), ErrInvalidFrequency)
	}
	return nil
}

// HasSearchTerms reports whether the appliance carries enough identity to
// make a manual search worthwhile. Searching with neither brand nor model
// number is defined as unproductive.
func HasSearchTerms(a Appliance) bool {
	return strings.TrimSpace(a.Brand) != "" || strings.TrimSpace(a.ModelNumber) != ""
}

func dedupKey(name string, f Frequency) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + string(f)
}

// TaskDedupKey builds the uniqueness key used for idempotent task imports.
func TaskDedupKey(name string, f Frequency) string { return dedupKey(name, f) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
