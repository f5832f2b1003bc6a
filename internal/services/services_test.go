package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingScanner struct {
	scans atomic.Int32
}

func (s *countingScanner) CheckDueDates(ctx context.Context) {
	s.scans.Add(1)
}

type countingFlusher struct {
	flushes atomic.Int32
}

func (f *countingFlusher) Flush(ctx context.Context) error {
	f.flushes.Add(1)
	return nil
}

func TestAlertScanner_ImmediateScanOnStart(t *testing.T) {
	t.Parallel()

	scanner := &countingScanner{}
	s := NewAlertScanner(scanner, time.Hour, nil)

	s.Start()
	defer s.Stop(context.Background())

	if got := scanner.scans.Load(); got != 1 {
		t.Fatalf("expected 1 immediate scan, got %d", got)
	}
}

func TestAlertScanner_RestartDoesNotStackSchedules(t *testing.T) {
	t.Parallel()

	scanner := &countingScanner{}
	s := NewAlertScanner(scanner, time.Second, nil)

	s.Start()
	s.Start()
	defer s.Stop(context.Background())

	// Two starts mean two immediate scans but only one live schedule; after
	// a bit more than one interval at most one periodic scan has fired.
	time.Sleep(1500 * time.Millisecond)
	if got := scanner.scans.Load(); got < 3 || got > 4 {
		t.Fatalf("expected 3-4 scans from a single schedule, got %d", got)
	}
}

func TestAlertScanner_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewAlertScanner(&countingScanner{}, time.Hour, nil)
	s.Start()
	s.Stop(context.Background())
	s.Stop(context.Background())
}

func TestAutoSaver_PeriodicFlush(t *testing.T) {
	t.Parallel()

	flusher := &countingFlusher{}
	s := NewAutoSaver(flusher, time.Second, nil)

	s.Start()
	time.Sleep(1500 * time.Millisecond)
	s.Stop(context.Background())

	// At least one periodic flush plus the final flush on stop.
	if got := flusher.flushes.Load(); got < 2 {
		t.Fatalf("expected at least 2 flushes, got %d", got)
	}
}

func TestAutoSaver_StopFlushesOnce(t *testing.T) {
	t.Parallel()

	flusher := &countingFlusher{}
	s := NewAutoSaver(flusher, time.Hour, nil)

	s.Start()
	s.Stop(context.Background())

	if got := flusher.flushes.Load(); got != 1 {
		t.Fatalf("expected exactly the final flush, got %d", got)
	}

	// A second stop with no live schedule is a no-op.
	s.Stop(context.Background())
	if got := flusher.flushes.Load(); got != 1 {
		t.Fatalf("expected no extra flush, got %d", got)
	}
}
