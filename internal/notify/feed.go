package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// Feed buffers the most recent notices for the presentation layer and mirrors
// each one to the logger. It is the concrete notifier handed to the board and
// the AI gateway.
type Feed struct {
	mu      sync.Mutex
	max     int
	notices []domain.Notice
	logger  *zap.Logger
}

func NewFeed(max int, logger *zap.Logger) *Feed {
	if max <= 0 {
		max = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		max:    max,
		logger: logger,
	}
}

// Notify appends the notice, dropping the oldest when the buffer is full.
func (f *Feed) Notify(n domain.Notice) {
	f.log(n)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	if len(f.notices) > f.max {
		f.notices = f.notices[len(f.notices)-f.max:]
	}
}

// Recent returns a snapshot of the buffered notices, newest last.
func (f *Feed) Recent() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notice(nil), f.notices...)
}

// Drain returns the buffered notices and empties the feed.
func (f *Feed) Drain() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	return out
}

func (f *Feed) log(n domain.Notice) {
	fields := []zap.Field{
		zap.String("severity", string(n.Severity)),
		zap.Duration("duration", n.Duration),
	}
	switch n.Severity {
	case domain.SeverityError:
		f.logger.Error(n.Message, fields...)
	case domain.SeverityWarning:
		f.logger.Warn(n.Message, fields...)
	default:
		f.logger.Info(n.Message, fields...)
	}
}
