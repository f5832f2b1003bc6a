package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Flusher is the persistence operation the autosaver drives. The board's
// flush coalesces concurrent calls, so the periodic writer and the debounced
// writer can safely overlap.
type Flusher interface {
	Flush(ctx context.Context) error
}

// AutoSaver is the periodic persistence safety net, independent of the
// debounced per-mutation save.
type AutoSaver struct {
	flusher  Flusher
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewAutoSaver(flusher Flusher, interval time.Duration, logger *zap.Logger) *AutoSaver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoSaver{
		flusher:  flusher,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the periodic flush. Restarting replaces any prior
// schedule.
func (s *AutoSaver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.cron = cron.New(cron.WithSeconds())
	schedule := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		if err := s.flusher.Flush(ctx); err != nil {
			s.logger.Error("periodic save failed", zap.Error(err))
		}
	})
	s.cron.Start()
	s.logger.Info("autosave started", zap.Duration("interval", s.interval))
}

// Stop halts the schedule and performs one final flush.
func (s *AutoSaver) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.cron = nil

	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Error("final save failed", zap.Error(err))
	}
	s.logger.Info("autosave stopped")
}
