package follow

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/dshills/follow/internal/notify"
)

// Sleeper suspends a poll loop between polls that found nothing.
// Sleep returns a non-nil error only when the loop must stop.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d).
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper waits on a timer and returns early when ctx is done.
// The waiting goroutine is parked, so other goroutines keep running.
type TimerSleeper struct{}

// Sleep waits for d or until ctx is done. A zero or negative d yields the
// processor once instead of waiting.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BlockingSleeper blocks the calling goroutine with time.Sleep.
// It is not interruptible: cancellation is noticed once d has elapsed.
type BlockingSleeper struct{}

// Sleep blocks for d, then reports whether ctx was cancelled meanwhile.
func (BlockingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		runtime.Gosched()
	} else {
		time.Sleep(d)
	}
	return ctx.Err()
}

// NotifySleeper waits like TimerSleeper but also wakes up when the followed
// path changes on disk. The timer always bounds the wait, so a missed or
// unsupported event only costs latency.
type NotifySleeper struct {
	watcher *notify.Watcher
	events  <-chan notify.Event
	errors  <-chan error
	logger  *slog.Logger
}

// NewNotifySleeper watches path for changes. The directory of path must exist.
func NewNotifySleeper(path string, logger *slog.Logger) (*NotifySleeper, error) {
	// One pending event is enough to cut a sleep short; the rest are
	// counted as dropped.
	w, err := notify.New(path, notify.WithBufferSize(1))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NotifySleeper{
		watcher: w,
		events:  w.Events(),
		errors:  w.Errors(),
		logger:  logger,
	}, nil
}

// Sleep waits for d, a change event, or ctx, whichever comes first.
// Like TimerSleeper, a zero or negative d only yields.
func (s *NotifySleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case ev, ok := <-s.events:
		if !ok {
			// Watcher gone: a nil channel never fires, leaving the timer.
			s.events = nil
			return nil
		}
		s.logger.Debug("woken by file event", "path", ev.Path, "op", ev.Op.String())
	case err, ok := <-s.errors:
		if !ok {
			s.errors = nil
			return nil
		}
		s.logger.Warn("file watcher error", "error", err)
	}
	return nil
}

// Close stops the underlying watcher.
func (s *NotifySleeper) Close() error {
	st := s.watcher.Stats()
	s.logger.Debug("file watcher closed",
		"events", st.TotalEvents,
		"dropped", st.Dropped,
		"errors", st.Errors,
		"watched", time.Since(st.StartTime).Round(time.Millisecond),
	)
	return s.watcher.Close()
}
