package model

import "errors"

// ErrMissingID is returned when an operation needs a server-assigned id and
// the task has none yet.
var ErrMissingID = errors.New("task has no id")

// Task is the domain model for a tracked task.
// ID is assigned by the server; Expire holds a YYYY-MM-DD due date or "".
type Task struct {
	ID     *int   `json:"id,omitempty"`
	Text   string `json:"text"`
	Done   bool   `json:"done,omitempty"`
	Expire string `json:"expire,omitempty"`
}

// Persisted reports whether the server has assigned an id.
func (t Task) Persisted() bool { return t.ID != nil }

// IDOf returns a pointer suitable for Task.ID.
func IDOf(n int) *int { return &n }
