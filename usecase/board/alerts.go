package board

import (
	"context"
	"fmt"
	"time"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// dueSoonWindow is how far ahead of the deadline the "due soon" alert fires.
const dueSoonWindow = 15 * time.Minute

// alertDisplay is how long due-date notices stay on screen.
const alertDisplay = 10 * time.Second

type dueStatus int

const (
	dueNone dueStatus = iota
	dueSoon
	dueOverdue
)

// classifyDue is the pure deadline classification. A deadline exactly at now
// is neither overdue nor due soon.
func classifyDue(due, now time.Time) dueStatus {
	delta := due.Sub(now)
	switch {
	case delta < 0:
		return dueOverdue
	case delta > 0 && delta <= dueSoonWindow:
		return dueSoon
	default:
		return dueNone
	}
}

// CheckDueDates scans all tasks for deadline transitions and emits one-shot
// alerts. The dedup marker records the due-date value that already alerted,
// so the same deadline never alerts twice while an edited deadline alerts
// again. Done tasks are exempt regardless of their due date.
func (b *Board) CheckDueDates(ctx context.Context) {
	now := b.now()
	changed := false

	type pendingAlert struct {
		severity domain.Severity
		message  string
	}
	var alerts []pendingAlert

	b.mu.Lock()
	for _, task := range b.tasks {
		if task.IsDone() || !task.HasDueDate() {
			continue
		}
		due := *task.DueDate
		if task.AlertSentForDueDate != nil && task.AlertSentForDueDate.Equal(due) {
			continue
		}

		switch classifyDue(due, now) {
		case dueOverdue:
			alerts = append(alerts, pendingAlert{
				severity: domain.SeverityError,
				message:  fmt.Sprintf("Task %q is overdue! Due: %s", task.Title, due.Format(time.RFC1123)),
			})
		case dueSoon:
			alerts = append(alerts, pendingAlert{
				severity: domain.SeverityWarning,
				message:  fmt.Sprintf("Task %q is due soon (%s)", task.Title, due.Format(time.RFC1123)),
			})
		default:
			continue
		}

		marker := due
		task.AlertSentForDueDate = &marker
		changed = true
	}
	b.mu.Unlock()

	for _, a := range alerts {
		b.notify(a.severity, a.message, alertDisplay)
	}
	if changed {
		b.scheduleSave()
	}
}
