package board

import (
	"time"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// UndoToken holds everything needed to restore a deleted task: the snapshot
// and the index it occupied. Tokens expire after the board's undo window.
type UndoToken struct {
	task      domain.Task
	index     int
	expiresAt time.Time
}

// Task returns the captured snapshot.
func (t *UndoToken) Task() domain.Task {
	return t.task.Clone()
}

// Index returns the position the task was deleted from.
func (t *UndoToken) Index() int {
	return t.index
}

// ExpiresAt returns the instant the token stops being honored.
func (t *UndoToken) ExpiresAt() time.Time {
	return t.expiresAt
}
