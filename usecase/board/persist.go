package board

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Aurelien-D/ToDoList-IA/domain"
	"github.com/Aurelien-D/ToDoList-IA/repository"
)

// Load reads the persisted task list and metrics. Absent or corrupt blobs
// fall back to empty defaults; the board always starts usable.
func (b *Board) Load(ctx context.Context) error {
	if b.store == nil {
		return nil
	}

	var tasks []*domain.Task
	blob, ok, err := b.store.Get(ctx, repository.KeyTasks)
	switch {
	case err != nil:
		b.reportStorageError("load", err)
	case ok:
		if err := json.Unmarshal([]byte(blob), &tasks); err != nil {
			b.logger.Error("discarding corrupt task blob", zap.Error(err))
			b.notify(domain.SeverityError, "Failed to load saved data", 4*time.Second)
			tasks = nil
		}
	}

	var metrics domain.Metrics
	blob, ok, err = b.store.Get(ctx, repository.KeyMetrics)
	if err == nil && ok {
		if err := json.Unmarshal([]byte(blob), &metrics); err != nil {
			b.logger.Warn("discarding corrupt metrics blob", zap.Error(err))
		}
	}

	b.mu.Lock()
	b.tasks = tasks
	b.metrics = metrics
	// Metrics are derived state; the persisted blob only bridges the gap
	// until the first recomputation.
	b.recomputeLocked()
	b.mu.Unlock()
	return nil
}

// Flush writes the task list and metrics blobs. Concurrent flushes coalesce
// into a single write; the debounced saver and the periodic saver share this
// path. Storage failures never roll back in-memory state.
func (b *Board) Flush(ctx context.Context) error {
	_, err, _ := b.flushGroup.Do("flush", func() (interface{}, error) {
		return nil, b.flushOnce(ctx)
	})
	return err
}

func (b *Board) flushOnce(ctx context.Context) error {
	if b.store == nil {
		return nil
	}

	b.mu.Lock()
	tasks := make([]domain.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		tasks = append(tasks, t.Clone())
	}
	metrics := b.metrics
	b.mu.Unlock()

	taskBlob, err := json.Marshal(tasks)
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "failed to serialize tasks", err)
	}
	metricsBlob, err := json.Marshal(metrics)
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "failed to serialize metrics", err)
	}

	if err := b.store.Set(ctx, repository.KeyTasks, string(taskBlob)); err != nil {
		b.reportStorageError("save", err)
		return err
	}
	if err := b.store.Set(ctx, repository.KeyMetrics, string(metricsBlob)); err != nil {
		b.reportStorageError("save", err)
		return err
	}
	return nil
}

// scheduleSave resets the debounce timer so bursts of mutations coalesce
// into one write. The timer is replaced, never stacked.
func (b *Board) scheduleSave() {
	if b.store == nil {
		return
	}

	b.debounceMu.Lock()
	defer b.debounceMu.Unlock()
	if b.debounceTimer != nil {
		b.debounceTimer.Stop()
	}
	b.debounceTimer = time.AfterFunc(b.saveDebounce, func() {
		if err := b.Flush(context.Background()); err != nil {
			b.logger.Error("debounced save failed", zap.Error(err))
		}
	})
}

// Close stops the debounce timer and performs a final flush.
func (b *Board) Close(ctx context.Context) error {
	b.debounceMu.Lock()
	if b.debounceTimer != nil {
		b.debounceTimer.Stop()
		b.debounceTimer = nil
	}
	b.debounceMu.Unlock()
	return b.Flush(ctx)
}

// reportStorageError logs every failure but notifies the user only once; the
// in-memory state stays authoritative either way.
func (b *Board) reportStorageError(op string, err error) {
	b.logger.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	b.storageNoticeOne.Do(func() {
		b.notify(domain.SeverityError, "Saving failed; changes are kept in memory only", 10*time.Second)
	})
}
