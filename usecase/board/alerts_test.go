package board

import (
	"context"
	"testing"
	"time"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

func TestClassifyDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  time.Time
		want dueStatus
	}{
		{"one second past", now.Add(-time.Second), dueOverdue},
		{"long overdue", now.Add(-24 * time.Hour), dueOverdue},
		{"exactly now", now, dueNone},
		{"one second ahead", now.Add(time.Second), dueSoon},
		{"at the window edge", now.Add(dueSoonWindow), dueSoon},
		{"just beyond the window", now.Add(dueSoonWindow + time.Second), dueNone},
		{"far ahead", now.Add(48 * time.Hour), dueNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyDue(tc.due, now); got != tc.want {
				t.Fatalf("classifyDue(%v) = %v, want %v", tc.due, got, tc.want)
			}
		})
	}
}

func TestCheckDueDates_OverdueAlertsOnce(t *testing.T) {
	t.Parallel()

	b, clock, notifier := newTestBoard(t)
	ctx := context.Background()

	due := clock.Now().Add(-time.Hour)
	mustAddTask(t, b, AddTaskInput{Title: "pay rent", DueDate: &due})

	errs := notifier.bySeverity(domain.SeverityError)
	if len(errs) != 1 {
		t.Fatalf("expected 1 overdue alert, got %d", len(errs))
	}
	if errs[0].Duration != alertDisplay {
		t.Fatalf("expected %v display duration, got %v", alertDisplay, errs[0].Duration)
	}

	// Subsequent scans see the marker and stay silent.
	b.CheckDueDates(ctx)
	clock.Advance(time.Minute)
	b.CheckDueDates(ctx)
	if errs := notifier.bySeverity(domain.SeverityError); len(errs) != 1 {
		t.Fatalf("expected the overdue alert to fire once, got %d", len(errs))
	}
}

func TestCheckDueDates_DueSoonWarning(t *testing.T) {
	t.Parallel()

	b, clock, notifier := newTestBoard(t)

	due := clock.Now().Add(10 * time.Minute)
	mustAddTask(t, b, AddTaskInput{Title: "join meeting", DueDate: &due})

	warnings := notifier.bySeverity(domain.SeverityWarning)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 due-soon warning, got %d", len(warnings))
	}
}

func TestCheckDueDates_FarFutureStaysSilentThenAlerts(t *testing.T) {
	t.Parallel()

	b, clock, notifier := newTestBoard(t)
	ctx := context.Background()

	due := clock.Now().Add(2 * time.Hour)
	mustAddTask(t, b, AddTaskInput{Title: "submit form", DueDate: &due})

	if got := notifier.bySeverity(domain.SeverityWarning); len(got) != 0 {
		t.Fatalf("expected no warning yet, got %d", len(got))
	}
	if marker := b.Tasks()[0].AlertSentForDueDate; marker != nil {
		t.Fatalf("expected no marker while outside the window, got %v", marker)
	}

	clock.Advance(2*time.Hour - 5*time.Minute)
	b.CheckDueDates(ctx)
	if got := notifier.bySeverity(domain.SeverityWarning); len(got) != 1 {
		t.Fatalf("expected 1 warning inside the window, got %d", len(got))
	}

	// Once warned, crossing into overdue does not re-alert for the same value.
	clock.Advance(time.Hour)
	b.CheckDueDates(ctx)
	if got := notifier.bySeverity(domain.SeverityError); len(got) != 0 {
		t.Fatalf("expected the marker to suppress the overdue alert, got %d", len(got))
	}
}

func TestCheckDueDates_DoneTasksExempt(t *testing.T) {
	t.Parallel()

	b, clock, notifier := newTestBoard(t)
	ctx := context.Background()

	due := clock.Now().Add(-time.Hour)
	task := mustAddTask(t, b, AddTaskInput{Title: "pay rent", Column: domain.ColumnDone, DueDate: &due})

	b.CheckDueDates(ctx)
	if got := notifier.bySeverity(domain.SeverityError); len(got) != 0 {
		t.Fatalf("expected done tasks to stay silent, got %d alerts", len(got))
	}

	// Moving back to active re-arms the deadline.
	if err := b.MoveTask(ctx, task.ID, domain.ColumnTodo); err != nil {
		t.Fatalf("MoveTask returned error: %v", err)
	}
	if got := notifier.bySeverity(domain.SeverityError); len(got) != 1 {
		t.Fatalf("expected 1 alert after leaving done, got %d", len(got))
	}
}

func TestCheckDueDates_EditedDueDateAlertsAgain(t *testing.T) {
	t.Parallel()

	b, clock, notifier := newTestBoard(t)
	ctx := context.Background()

	due := clock.Now().Add(-time.Hour)
	task := mustAddTask(t, b, AddTaskInput{Title: "pay rent", DueDate: &due})
	if got := notifier.bySeverity(domain.SeverityError); len(got) != 1 {
		t.Fatalf("expected 1 initial alert, got %d", len(got))
	}

	newDue := clock.Now().Add(-30 * time.Minute)
	if err := b.EditTask(ctx, task.ID, TaskPatch{DueDate: &newDue}); err != nil {
		t.Fatalf("EditTask returned error: %v", err)
	}
	if got := notifier.bySeverity(domain.SeverityError); len(got) != 2 {
		t.Fatalf("expected a second alert for the new due date, got %d", len(got))
	}
}
