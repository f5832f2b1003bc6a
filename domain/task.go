package domain

import "time"

// Column is the workflow stage of a task.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnDone       Column = "done"
)

// Columns lists the workflow stages in board order.
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnDone}

func IsValidColumn(c Column) bool {
	switch c {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return true
	}
	return false
}

// Priority classifies how soon a task should be handled.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityNormal   Priority = "Normal"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Categories is the fixed set of task categories. The AI gateway only ever
// applies suggestions that match one of these exactly.
var Categories = []string{"Work", "Personal", "Urgent", "Shopping", "Health", "Projects"}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Task is the central entity of the board.
type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Priority Priority `json:"priority"`
	Column   Column   `json:"column"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`

	// AlertSentForDueDate records the due-date value an alert was already
	// emitted for. It must be cleared whenever DueDate changes.
	AlertSentForDueDate *time.Time `json:"alertSentForDueDate,omitempty"`

	Subtasks    []string `json:"subtasks"`
	AIGenerated bool     `json:"aiGenerated"`
}

func (t *Task) IsDone() bool {
	return t != nil && t.Column == ColumnDone
}

// HasDueDate reports whether the task carries a usable due date. A zero
// timestamp can survive decoding of malformed persisted data and is treated
// as absent.
func (t *Task) HasDueDate() bool {
	return t != nil && t.DueDate != nil && !t.DueDate.IsZero()
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing board-owned state.
func (t *Task) Clone() Task {
	cp := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		cp.CompletedAt = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		cp.DueDate = &v
	}
	if t.AlertSentForDueDate != nil {
		v := *t.AlertSentForDueDate
		cp.AlertSentForDueDate = &v
	}
	if t.Subtasks != nil {
		cp.Subtasks = append([]string(nil), t.Subtasks...)
	}
	return cp
}
