package todo

import (
	"fmt"
	"time"
)

// Task is a single todo item held in memory.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	// DueDate is a textual timestamp. Empty means no deadline.
	DueDate string
}

// HasDueDate reports whether the task carries a deadline.
func (t Task) HasDueDate() bool {
	return t.DueDate != ""
}

// Due returns the parsed due date. ok is false when there is no due date or
// it does not parse.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := ParseTimestamp(t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// DueIn is Due with date-only and zoneless due dates read in loc. A due date
// of "2025-07-01" is July 1 wherever the reader is.
func (t Task) DueIn(loc *time.Location) (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := ParseTimestampIn(t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// Record is the storable form of a Task.
type Record struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	DueDate     string `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
}

// Update lists the fields to replace on an existing task. Nil fields are left
// untouched.
type Update struct {
	Title       *string
	Description *string
	Completed   *bool
	// DueDate set to an empty string clears the due date.
	DueDate *string
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil && u.DueDate == nil
}

// Apply returns t with the update's fields replaced.
func (u Update) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	return t
}

// SetTitle returns an update replacing the title.
func SetTitle(title string) Update {
	return Update{Title: &title}
}

// SetDueDate returns an update replacing the due date.
func SetDueDate(due string) Update {
	return Update{DueDate: &due}
}

// ClearDueDate returns an update removing the due date.
func ClearDueDate() Update {
	empty := ""
	return Update{DueDate: &empty}
}

// DueState classifies a stored dueDate field.
type DueState int

const (
	// DueAbsent means the field was missing or null.
	DueAbsent DueState = iota
	// DueInvalid means the field was present but not a usable timestamp.
	// It is treated exactly like DueAbsent.
	DueInvalid
	// DueValid means the field parsed as a timestamp.
	DueValid
)

func (s DueState) String() string {
	switch s {
	case DueAbsent:
		return "absent"
	case DueInvalid:
		return "invalid"
	case DueValid:
		return "valid"
	default:
		return fmt.Sprintf("DueState(%d)", int(s))
	}
}

// ParseReport summarizes what Parse did with each stored entry.
type ParseReport struct {
	Total            int
	Kept             int
	Dropped          int
	DefaultedCreated int
	InvalidDue       int
	Issues           []error
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
