package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeStore struct {
	mu     sync.Mutex
	blobs  map[string]string
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string]string)}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.blobs[key]
	return v, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.blobs[key] = value
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string]string)
	return nil
}

type fakeGateway struct {
	configured bool
	category   string
	subtasks   []string
	err        error
	calls      int
}

func (g *fakeGateway) IsConfigured() bool { return g.configured }

func (g *fakeGateway) Categorize(ctx context.Context, title string) (string, error) {
	g.calls++
	return g.category, g.err
}

func (g *fakeGateway) GenerateSubtasks(ctx context.Context, title string) ([]string, error) {
	g.calls++
	return g.subtasks, g.err
}

func (g *fakeGateway) ClearCache() {}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (n *fakeNotifier) Notify(notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *fakeNotifier) bySeverity(severity domain.Severity) []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notice
	for _, notice := range n.notices {
		if notice.Severity == severity {
			out = append(out, notice)
		}
	}
	return out
}

func newTestBoard(t *testing.T) (*Board, *fakeClock, *fakeNotifier) {
	t.Helper()
	clock := newFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	notifier := &fakeNotifier{}
	b := New(nil, nil, notifier, nil, Config{}, clock.Now)
	return b, clock, notifier
}

func mustAddTask(t *testing.T, b *Board, in AddTaskInput) domain.Task {
	t.Helper()
	task, err := b.AddTask(context.Background(), in)
	if err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}
	return *task
}

func TestAddTask_Defaults(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	task := mustAddTask(t, b, AddTaskInput{Title: "Buy milk"})

	if task.Priority != domain.PriorityNormal {
		t.Fatalf("expected Normal priority, got %s", task.Priority)
	}
	if task.Column != domain.ColumnTodo {
		t.Fatalf("expected todo column, got %s", task.Column)
	}
	if task.ID == "" {
		t.Fatal("expected generated id")
	}
	if got := b.Metrics().TotalTasks; got != 1 {
		t.Fatalf("expected totalTasks 1, got %d", got)
	}
}

func TestAddTask_EmptyTitle(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	if _, err := b.AddTask(context.Background(), AddTaskInput{Title: "   "}); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if got := b.Metrics().TotalTasks; got != 0 {
		t.Fatalf("expected no state change, got totalTasks %d", got)
	}
}

func TestAddTask_UrgentKeywordSuggestsCritical(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	task := mustAddTask(t, b, AddTaskInput{Title: "Urgent: fix server now"})
	if task.Priority != domain.PriorityCritical {
		t.Fatalf("expected Critical priority, got %s", task.Priority)
	}
}

func TestAddTask_AwaitsCategorySuggestion(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	gateway := &fakeGateway{configured: true, category: "Shopping"}
	b := New(nil, gateway, nil, nil, Config{}, clock.Now)

	task := mustAddTask(t, b, AddTaskInput{Title: "Buy milk"})
	if task.Category != "Shopping" {
		t.Fatalf("expected suggested category, got %q", task.Category)
	}
	if gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", gateway.calls)
	}
}

func TestAddTask_ExplicitCategorySkipsGateway(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	gateway := &fakeGateway{configured: true, category: "Shopping"}
	b := New(nil, gateway, nil, nil, Config{}, clock.Now)

	task := mustAddTask(t, b, AddTaskInput{Title: "Buy milk", Category: "Personal"})
	if task.Category != "Personal" {
		t.Fatalf("expected explicit category, got %q", task.Category)
	}
	if gateway.calls != 0 {
		t.Fatalf("expected no gateway call, got %d", gateway.calls)
	}
}

func TestAddTask_GatewayFailureLeavesCategoryUnset(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	gateway := &fakeGateway{configured: true, err: domain.NewError(domain.ErrCodeGatewayRequest, "boom")}
	b := New(nil, gateway, nil, nil, Config{}, clock.Now)

	task := mustAddTask(t, b, AddTaskInput{Title: "Buy milk"})
	if task.Category != "" {
		t.Fatalf("expected unset category, got %q", task.Category)
	}
}

func TestMoveTask_DoneTransitionStampsAndClears(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	task := mustAddTask(t, b, AddTaskInput{Title: "Write report"})

	if err := b.MoveTask(ctx, task.ID, domain.ColumnDone); err != nil {
		t.Fatalf("MoveTask returned error: %v", err)
	}
	moved := b.Tasks()[0]
	if moved.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set on done entry")
	}
	if moved.CompletedAt.Before(moved.CreatedAt) {
		t.Fatal("CompletedAt must not precede CreatedAt")
	}
	if got := b.Metrics().CompletedToday; got != 1 {
		t.Fatalf("expected completedToday 1, got %d", got)
	}

	if err := b.MoveTask(ctx, task.ID, domain.ColumnTodo); err != nil {
		t.Fatalf("MoveTask returned error: %v", err)
	}
	moved = b.Tasks()[0]
	if moved.CompletedAt != nil {
		t.Fatal("expected CompletedAt cleared on done exit")
	}
	if got := b.Metrics().CompletedToday; got != 0 {
		t.Fatalf("expected completedToday 0, got %d", got)
	}
}

func TestMoveTask_UnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	if err := b.MoveTask(context.Background(), "missing", domain.ColumnDone); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestDeleteTask_UndoRestoresAtIndex(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	first := mustAddTask(t, b, AddTaskInput{Title: "first"})
	second := mustAddTask(t, b, AddTaskInput{Title: "second"})
	mustAddTask(t, b, AddTaskInput{Title: "third"})

	token, err := b.DeleteTask(ctx, second.ID, true)
	if err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if token == nil {
		t.Fatal("expected undo token")
	}
	if token.Index() != 1 {
		t.Fatalf("expected original index 1, got %d", token.Index())
	}
	if got := b.Metrics().TotalTasks; got != 2 {
		t.Fatalf("expected totalTasks 2 after delete, got %d", got)
	}

	if err := b.RestoreTask(ctx, token); err != nil {
		t.Fatalf("RestoreTask returned error: %v", err)
	}
	tasks := b.Tasks()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks after restore, got %d", len(tasks))
	}
	if tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatal("expected restore at the original index")
	}
}

func TestRestoreTask_ExpiredToken(t *testing.T) {
	t.Parallel()

	b, clock, _ := newTestBoard(t)
	ctx := context.Background()

	task := mustAddTask(t, b, AddTaskInput{Title: "doomed"})
	token, err := b.DeleteTask(ctx, task.ID, true)
	if err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	clock.Advance(9 * time.Second)
	if err := b.RestoreTask(ctx, token); !errors.Is(err, domain.ErrUndoExpired) {
		t.Fatalf("expected ErrUndoExpired, got %v", err)
	}
	if got := b.Metrics().TotalTasks; got != 0 {
		t.Fatalf("expected task to stay deleted, got totalTasks %d", got)
	}
}

func TestEditTask_DueDateChangeResetsAlertMarker(t *testing.T) {
	t.Parallel()

	b, clock, _ := newTestBoard(t)
	ctx := context.Background()

	due := clock.Now().Add(-time.Hour)
	task := mustAddTask(t, b, AddTaskInput{Title: "pay rent", DueDate: &due})

	// The creation scan already alerted and set the marker.
	if got := b.Tasks()[0].AlertSentForDueDate; got == nil || !got.Equal(due) {
		t.Fatalf("expected marker set to due date, got %v", got)
	}

	newDue := clock.Now().Add(-30 * time.Minute)
	// EditTask triggers a fresh scan, which re-alerts for the new value.
	if err := b.EditTask(ctx, task.ID, TaskPatch{DueDate: &newDue}); err != nil {
		t.Fatalf("EditTask returned error: %v", err)
	}
	edited := b.Tasks()[0]
	if edited.DueDate == nil || !edited.DueDate.Equal(newDue) {
		t.Fatalf("expected due date updated, got %v", edited.DueDate)
	}
	if edited.AlertSentForDueDate == nil || !edited.AlertSentForDueDate.Equal(newDue) {
		t.Fatalf("expected marker to follow the new due date, got %v", edited.AlertSentForDueDate)
	}
}

func TestEditTask_ClearDueDateResetsMarker(t *testing.T) {
	t.Parallel()

	b, clock, _ := newTestBoard(t)
	ctx := context.Background()

	due := clock.Now().Add(-time.Hour)
	task := mustAddTask(t, b, AddTaskInput{Title: "pay rent", DueDate: &due})

	if err := b.EditTask(ctx, task.ID, TaskPatch{ClearDueDate: true}); err != nil {
		t.Fatalf("EditTask returned error: %v", err)
	}
	edited := b.Tasks()[0]
	if edited.DueDate != nil {
		t.Fatal("expected due date cleared")
	}
	if edited.AlertSentForDueDate != nil {
		t.Fatal("expected alert marker cleared with the due date")
	}
}

func TestEditTask_EmptyTitleRejected(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	task := mustAddTask(t, b, AddTaskInput{Title: "keep me"})
	empty := "  "
	if err := b.EditTask(context.Background(), task.ID, TaskPatch{Title: &empty}); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if got := b.Tasks()[0].Title; got != "keep me" {
		t.Fatalf("expected title unchanged, got %q", got)
	}
}

func TestSubtasks_AddRemoveValidation(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	task := mustAddTask(t, b, AddTaskInput{Title: "plan trip"})

	if err := b.AddSubtask(ctx, task.ID, "  "); !errors.Is(err, domain.ErrEmptySubtask) {
		t.Fatalf("expected ErrEmptySubtask, got %v", err)
	}
	if err := b.AddSubtask(ctx, task.ID, "book flights"); err != nil {
		t.Fatalf("AddSubtask returned error: %v", err)
	}
	if err := b.AddSubtask(ctx, task.ID, "reserve hotel"); err != nil {
		t.Fatalf("AddSubtask returned error: %v", err)
	}

	if err := b.RemoveSubtask(ctx, task.ID, 5); !errors.Is(err, domain.ErrSubtaskOutOfRange) {
		t.Fatalf("expected ErrSubtaskOutOfRange, got %v", err)
	}
	if err := b.RemoveSubtask(ctx, task.ID, 0); err != nil {
		t.Fatalf("RemoveSubtask returned error: %v", err)
	}

	got := b.Tasks()[0].Subtasks
	if len(got) != 1 || got[0] != "reserve hotel" {
		t.Fatalf("unexpected subtasks: %v", got)
	}
}

func TestAbsorbAsSubtask(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	source := mustAddTask(t, b, AddTaskInput{Title: "Call plumber"})
	target := mustAddTask(t, b, AddTaskInput{Title: "House maintenance"})

	if err := b.AbsorbAsSubtask(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("AbsorbAsSubtask returned error: %v", err)
	}

	tasks := b.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected source deleted, got %d tasks", len(tasks))
	}
	count := 0
	for _, s := range tasks[0].Subtasks {
		if s == "Call plumber" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one absorbed subtask, got %d", count)
	}
	if got := b.Metrics().TotalTasks; got != 1 {
		t.Fatalf("expected totalTasks 1, got %d", got)
	}
}

func TestAbsorbAsSubtask_DuplicateTitleNotAppendedTwice(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	target := mustAddTask(t, b, AddTaskInput{Title: "House maintenance"})
	if err := b.AddSubtask(ctx, target.ID, "Call plumber"); err != nil {
		t.Fatalf("AddSubtask returned error: %v", err)
	}
	source := mustAddTask(t, b, AddTaskInput{Title: "Call plumber"})

	if err := b.AbsorbAsSubtask(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("AbsorbAsSubtask returned error: %v", err)
	}
	subtasks := b.Tasks()[0].Subtasks
	if len(subtasks) != 1 {
		t.Fatalf("expected duplicate skipped, got %v", subtasks)
	}
}

func TestAbsorbAsSubtask_SelfAndUnknownAreNoOps(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	task := mustAddTask(t, b, AddTaskInput{Title: "alone"})

	if err := b.AbsorbAsSubtask(ctx, task.ID, task.ID); err != nil {
		t.Fatalf("expected self-absorb no-op, got %v", err)
	}
	if err := b.AbsorbAsSubtask(ctx, task.ID, "missing"); err != nil {
		t.Fatalf("expected unknown-target no-op, got %v", err)
	}
	if got := b.Metrics().TotalTasks; got != 1 {
		t.Fatalf("expected task untouched, got totalTasks %d", got)
	}
}

func TestRecomputeMetrics_Idempotent(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	done := mustAddTask(t, b, AddTaskInput{Title: "a"})
	mustAddTask(t, b, AddTaskInput{Title: "b"})
	if err := b.MoveTask(ctx, done.ID, domain.ColumnDone); err != nil {
		t.Fatalf("MoveTask returned error: %v", err)
	}

	first := b.RecomputeMetrics()
	second := b.RecomputeMetrics()
	if first != second {
		t.Fatalf("expected identical metrics, got %+v then %+v", first, second)
	}
	if first.ProductivityScore != 50 {
		t.Fatalf("expected productivity 50, got %d", first.ProductivityScore)
	}
}

func TestGenerateSubtasks_MergesAndFlagsTask(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	gateway := &fakeGateway{configured: true, subtasks: []string{"step one", "step two"}}
	b := New(nil, gateway, nil, nil, Config{}, clock.Now)
	ctx := context.Background()

	task := mustAddTask(t, b, AddTaskInput{Title: "big project", Category: "Work"})
	if err := b.GenerateSubtasks(ctx, task.ID); err != nil {
		t.Fatalf("GenerateSubtasks returned error: %v", err)
	}

	got := b.Tasks()[0]
	if len(got.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %v", got.Subtasks)
	}
	if !got.AIGenerated {
		t.Fatal("expected aiGenerated flag")
	}
}

func TestSearch_MatchesTitleCategoryPriority(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)

	mustAddTask(t, b, AddTaskInput{Title: "Buy milk", Category: "Shopping"})
	mustAddTask(t, b, AddTaskInput{Title: "Urgent server fix"})

	if got := b.Search("milk"); len(got) != 1 {
		t.Fatalf("expected 1 title match, got %d", len(got))
	}
	if got := b.Search("shopping"); len(got) != 1 {
		t.Fatalf("expected 1 category match, got %d", len(got))
	}
	if got := b.Search("critical"); len(got) != 1 {
		t.Fatalf("expected 1 priority match, got %d", len(got))
	}
	if got := b.Search(""); len(got) != 2 {
		t.Fatalf("expected all tasks for empty term, got %d", len(got))
	}
}

func TestDoneInvariant_HoldsAcrossMutations(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBoard(t)
	ctx := context.Background()

	mustAddTask(t, b, AddTaskInput{Title: "created done", Column: domain.ColumnDone})
	moved := mustAddTask(t, b, AddTaskInput{Title: "moved later"})
	if err := b.MoveTask(ctx, moved.ID, domain.ColumnInProgress); err != nil {
		t.Fatalf("MoveTask returned error: %v", err)
	}

	for _, task := range b.Tasks() {
		isDone := task.Column == domain.ColumnDone
		hasStamp := task.CompletedAt != nil
		if isDone != hasStamp {
			t.Fatalf("invariant violated for %q: done=%v completedAt=%v", task.Title, isDone, task.CompletedAt)
		}
		if hasStamp && task.CompletedAt.Before(task.CreatedAt) {
			t.Fatalf("completedAt precedes createdAt for %q", task.Title)
		}
	}
}
