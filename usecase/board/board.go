package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Aurelien-D/ToDoList-IA/domain"
	"github.com/Aurelien-D/ToDoList-IA/repository"
	"github.com/Aurelien-D/ToDoList-IA/usecase"
)

// Config carries the board tunables.
type Config struct {
	SaveDebounce time.Duration
	UndoWindow   time.Duration
}

// Board owns the authoritative task list and derived metrics. Every mutation
// flows through it; collaborators (store, gateway, notifier) are injected.
type Board struct {
	mu      sync.Mutex
	tasks   []*domain.Task
	metrics domain.Metrics

	store    repository.BlobStore
	gateway  usecase.SuggestionGateway
	notifier usecase.Notifier
	logger   *zap.Logger
	now      func() time.Time

	saveDebounce time.Duration
	undoWindow   time.Duration

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	flushGroup       singleflight.Group
	storageNoticeOne sync.Once
}

// New builds a board. The clock is injectable for deterministic tests; nil
// collaborators degrade gracefully (no persistence, no AI, no notices).
func New(store repository.BlobStore, gateway usecase.SuggestionGateway, notifier usecase.Notifier, logger *zap.Logger, cfg Config, now func() time.Time) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = time.Second
	}
	if cfg.UndoWindow <= 0 {
		cfg.UndoWindow = 8 * time.Second
	}
	return &Board{
		store:        store,
		gateway:      gateway,
		notifier:     notifier,
		logger:       logger,
		now:          now,
		saveDebounce: cfg.SaveDebounce,
		undoWindow:   cfg.UndoWindow,
	}
}

// AddTaskInput carries the creation parameters. Zero values mean "unset".
type AddTaskInput struct {
	Title    string
	Category string
	Priority domain.Priority
	Column   domain.Column
	DueDate  *time.Time
}

// AddTask creates a task. An unset priority is suggested from title keywords;
// an unset category is requested from the AI gateway when one is configured,
// and a failing suggestion leaves the field unset without failing creation.
func (b *Board) AddTask(ctx context.Context, in AddTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	column := in.Column
	if column == "" {
		column = domain.ColumnTodo
	}
	if !domain.IsValidColumn(column) {
		return nil, domain.ErrInvalidColumn
	}
	if in.Priority != "" && !domain.IsValidPriority(in.Priority) {
		return nil, domain.ErrInvalidPriority
	}
	if in.Category != "" && !domain.IsValidCategory(in.Category) {
		return nil, domain.ErrInvalidCategory
	}

	now := b.now()
	task := &domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  in.Category,
		Priority:  in.Priority,
		Column:    column,
		CreatedAt: now,
		Subtasks:  []string{},
	}
	if in.DueDate != nil && !in.DueDate.IsZero() {
		due := *in.DueDate
		task.DueDate = &due
	}
	if task.Column == domain.ColumnDone {
		completed := now
		task.CompletedAt = &completed
	}
	if task.Priority == "" {
		task.Priority = SuggestPriority(title)
	}

	// The category suggestion is the one path where creation awaits the
	// network. It runs outside the board lock and its failure is non-fatal.
	if task.Category == "" && b.gateway != nil && b.gateway.IsConfigured() {
		suggested, err := b.gateway.Categorize(ctx, title)
		if err != nil {
			b.logger.Warn("category suggestion failed", zap.String("title", title), zap.Error(err))
		} else if suggested != "" {
			task.Category = suggested
		}
	}

	b.mu.Lock()
	b.tasks = append(b.tasks, task)
	b.recomputeLocked()
	snapshot := task.Clone()
	b.mu.Unlock()

	b.notifySuccess(fmt.Sprintf("Task %q added", title))
	b.scheduleSave()
	b.CheckDueDates(ctx)
	return &snapshot, nil
}

// MoveTask changes a task's workflow stage. Entering done stamps
// CompletedAt; leaving done clears it. Unknown ids are a silent no-op.
func (b *Board) MoveTask(ctx context.Context, id string, column domain.Column) error {
	if !domain.IsValidColumn(column) {
		return domain.ErrInvalidColumn
	}

	b.mu.Lock()
	task := b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}

	previous := task.Column
	task.Column = column
	if column == domain.ColumnDone && previous != domain.ColumnDone {
		completed := b.now()
		task.CompletedAt = &completed
	} else if previous == domain.ColumnDone && column != domain.ColumnDone {
		task.CompletedAt = nil
	}
	b.recomputeLocked()
	title := task.Title
	b.mu.Unlock()

	if column == domain.ColumnDone && previous != domain.ColumnDone {
		b.notifySuccess(fmt.Sprintf("Task %q completed!", title))
	}
	b.scheduleSave()
	b.CheckDueDates(ctx)
	return nil
}

// DeleteTask removes a task. With withUndo it returns a token that restores
// the exact snapshot at the exact index for a bounded window.
func (b *Board) DeleteTask(ctx context.Context, id string, withUndo bool) (*UndoToken, error) {
	b.mu.Lock()
	index := -1
	for i, t := range b.tasks {
		if t.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		b.mu.Unlock()
		return nil, nil
	}

	task := b.tasks[index]
	b.tasks = append(b.tasks[:index], b.tasks[index+1:]...)
	b.recomputeLocked()
	snapshot := task.Clone()
	b.mu.Unlock()

	b.notifySuccess(fmt.Sprintf("Task %q deleted", snapshot.Title))
	b.scheduleSave()
	b.CheckDueDates(ctx)

	if !withUndo {
		return nil, nil
	}
	return &UndoToken{
		task:      snapshot,
		index:     index,
		expiresAt: b.now().Add(b.undoWindow),
	}, nil
}

// RestoreTask re-inserts a deleted task at its original index. Expired
// tokens are rejected.
func (b *Board) RestoreTask(ctx context.Context, token *UndoToken) error {
	if token == nil {
		return domain.NewError(domain.ErrCodeInvalid, "missing undo token")
	}
	if b.now().After(token.expiresAt) {
		return domain.ErrUndoExpired
	}

	b.mu.Lock()
	task := token.task.Clone()
	index := token.index
	if index < 0 {
		index = 0
	}
	if index > len(b.tasks) {
		index = len(b.tasks)
	}
	b.tasks = append(b.tasks, nil)
	copy(b.tasks[index+1:], b.tasks[index:])
	b.tasks[index] = &task
	b.recomputeLocked()
	b.mu.Unlock()

	b.notifySuccess("Task restored")
	b.scheduleSave()
	b.CheckDueDates(ctx)
	return nil
}

// TaskPatch is a partial update. Nil fields are left unchanged; ClearDueDate
// removes the due date.
type TaskPatch struct {
	Title        *string
	Category     *string
	Priority     *domain.Priority
	DueDate      *time.Time
	ClearDueDate bool
}

// EditTask applies a patch. Any change to the due date, including clearing
// it, resets the alert dedup marker so a fresh alert can fire.
func (b *Board) EditTask(ctx context.Context, id string, patch TaskPatch) error {
	var title string
	if patch.Title != nil {
		title = strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.ErrEmptyTitle
		}
	}
	if patch.Category != nil && *patch.Category != "" && !domain.IsValidCategory(*patch.Category) {
		return domain.ErrInvalidCategory
	}
	if patch.Priority != nil && !domain.IsValidPriority(*patch.Priority) {
		return domain.ErrInvalidPriority
	}

	b.mu.Lock()
	task := b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}

	if patch.Title != nil {
		task.Title = title
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}

	if patch.ClearDueDate || patch.DueDate != nil {
		var next *time.Time
		if !patch.ClearDueDate {
			due := *patch.DueDate
			next = &due
		}
		if !sameDueDate(task.DueDate, next) {
			task.AlertSentForDueDate = nil
		}
		task.DueDate = next
	}
	b.recomputeLocked()
	b.mu.Unlock()

	b.notifySuccess("Task updated")
	b.scheduleSave()
	b.CheckDueDates(ctx)
	return nil
}

// AddSubtask appends a label to the task's subtask list.
func (b *Board) AddSubtask(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptySubtask
	}

	b.mu.Lock()
	task := b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}
	task.Subtasks = append(task.Subtasks, text)
	b.mu.Unlock()

	b.notifySuccess("Subtask added")
	b.scheduleSave()
	return nil
}

// RemoveSubtask removes the label at index. Subtasks have no identity of
// their own, so operations are index-based on the current ordering.
func (b *Board) RemoveSubtask(ctx context.Context, id string, index int) error {
	b.mu.Lock()
	task := b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}
	if index < 0 || index >= len(task.Subtasks) {
		b.mu.Unlock()
		return domain.ErrSubtaskOutOfRange
	}
	removed := task.Subtasks[index]
	task.Subtasks = append(task.Subtasks[:index], task.Subtasks[index+1:]...)
	b.mu.Unlock()

	b.notifySuccess(fmt.Sprintf("Subtask %q removed", removed))
	b.scheduleSave()
	return nil
}

// AbsorbAsSubtask merges the source task into the target's subtask list and
// deletes the source. The absorption is never undoable.
func (b *Board) AbsorbAsSubtask(ctx context.Context, sourceID, targetID string) error {
	if sourceID == targetID {
		return nil
	}

	b.mu.Lock()
	source := b.findLocked(sourceID)
	target := b.findLocked(targetID)
	if source == nil || target == nil {
		b.mu.Unlock()
		return nil
	}

	if !containsExact(target.Subtasks, source.Title) {
		target.Subtasks = append(target.Subtasks, source.Title)
	}
	for i, t := range b.tasks {
		if t.ID == sourceID {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			break
		}
	}
	b.recomputeLocked()
	sourceTitle, targetTitle := source.Title, target.Title
	b.mu.Unlock()

	b.notifySuccess(fmt.Sprintf("%q added as a subtask of %q", sourceTitle, targetTitle))
	b.scheduleSave()
	return nil
}

// GenerateSubtasks asks the gateway for subtask suggestions and merges them
// into the task. The task may have been deleted while the request was in
// flight; the result is then dropped.
func (b *Board) GenerateSubtasks(ctx context.Context, id string) error {
	b.mu.Lock()
	task := b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}
	title := task.Title
	b.mu.Unlock()

	if b.gateway == nil {
		return domain.ErrGatewayUnconfigured
	}
	subtasks, err := b.gateway.GenerateSubtasks(ctx, title)
	if err != nil {
		return err
	}
	if len(subtasks) == 0 {
		b.notifyInfo("The AI could not produce relevant subtasks.")
		return nil
	}

	b.mu.Lock()
	task = b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}
	task.Subtasks = append(task.Subtasks, subtasks...)
	task.AIGenerated = true
	b.mu.Unlock()

	b.notifySuccess(fmt.Sprintf("%d subtasks generated by the AI", len(subtasks)))
	b.scheduleSave()
	return nil
}

// SuggestCategory asks the gateway for a category and applies it only when
// the task has none yet.
func (b *Board) SuggestCategory(ctx context.Context, id string) error {
	b.mu.Lock()
	task := b.findLocked(id)
	if task == nil {
		b.mu.Unlock()
		return nil
	}
	title, category := task.Title, task.Category
	b.mu.Unlock()

	if category != "" {
		b.notifyInfo(fmt.Sprintf("Task %q is already categorized.", title))
		return nil
	}
	if b.gateway == nil {
		return domain.ErrGatewayUnconfigured
	}
	suggested, err := b.gateway.Categorize(ctx, title)
	if err != nil {
		return err
	}
	if suggested == "" {
		b.notifyInfo("The AI could not assign a relevant category.")
		return nil
	}

	b.mu.Lock()
	task = b.findLocked(id)
	if task != nil && task.Category == "" {
		task.Category = suggested
	}
	b.mu.Unlock()

	b.notifySuccess(fmt.Sprintf("Task %q categorized as %q by the AI.", title, suggested))
	b.scheduleSave()
	return nil
}

// RecomputeMetrics rederives metrics from the task list. It is idempotent.
func (b *Board) RecomputeMetrics() domain.Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recomputeLocked()
	return b.metrics
}

// Metrics returns the current derived metrics.
func (b *Board) Metrics() domain.Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics
}

// Tasks returns a snapshot of all tasks in board order.
func (b *Board) Tasks() []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// TasksByColumn returns a snapshot of the tasks in one workflow stage.
func (b *Board) TasksByColumn(column domain.Column) []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Task
	for _, t := range b.tasks {
		if t.Column == column {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Search filters tasks by a case-insensitive match on title, category or
// priority. An empty term returns everything.
func (b *Board) Search(term string) []domain.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return b.Tasks()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Task
	for _, t := range b.tasks {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Category), term) ||
			strings.Contains(strings.ToLower(string(t.Priority)), term) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Reset clears all tasks, metrics, persisted blobs and the AI cache.
func (b *Board) Reset(ctx context.Context) error {
	b.mu.Lock()
	b.tasks = nil
	b.metrics = domain.Metrics{}
	b.mu.Unlock()

	if b.gateway != nil {
		b.gateway.ClearCache()
	}
	if b.store != nil {
		if err := b.store.Clear(ctx); err != nil {
			b.reportStorageError("reset", err)
			return err
		}
	}
	b.notifySuccess("Application reset successfully")
	return nil
}

func (b *Board) findLocked(id string) *domain.Task {
	for _, t := range b.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (b *Board) recomputeLocked() {
	b.metrics = domain.ComputeMetrics(b.tasks, b.now())
}

func containsExact(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func sameDueDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (b *Board) notifySuccess(message string) {
	b.notify(domain.SeveritySuccess, message, 4*time.Second)
}

func (b *Board) notifyInfo(message string) {
	b.notify(domain.SeverityInfo, message, 4*time.Second)
}

func (b *Board) notify(severity domain.Severity, message string, duration time.Duration) {
	if b.notifier == nil {
		return
	}
	b.notifier.Notify(domain.Notice{
		Severity:  severity,
		Message:   message,
		Duration:  duration,
		CreatedAt: b.now(),
	})
}
