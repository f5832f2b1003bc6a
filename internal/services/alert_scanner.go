package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DueDateScanner is the board-side scan the alert engine drives.
type DueDateScanner interface {
	CheckDueDates(ctx context.Context)
}

// AlertScanner runs the due-date scan on a fixed interval. Starting an
// already-running scanner replaces the previous schedule instead of stacking
// a second one.
type AlertScanner struct {
	scanner  DueDateScanner
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewAlertScanner(scanner DueDateScanner, interval time.Duration, logger *zap.Logger) *AlertScanner {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertScanner{
		scanner:  scanner,
		interval: interval,
		logger:   logger,
	}
}

// Start performs one immediate scan and then schedules the interval.
func (s *AlertScanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.scanner.CheckDueDates(context.Background())

	s.cron = cron.New(cron.WithSeconds())
	schedule := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		s.scanner.CheckDueDates(ctx)
	})
	s.cron.Start()
	s.logger.Info("due-date scanner started", zap.Duration("interval", s.interval))
}

// Stop halts the schedule, waiting for a running scan to finish.
func (s *AlertScanner) Stop(ctx context.Context) {
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
	s.logger.Info("due-date scanner stopped")
}
