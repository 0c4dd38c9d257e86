// Package follow emits the lines appended to a file as they are written,
// across rotations of that file.
//
// A Tail first emits a seed (the last N lines, or nothing when the whole file
// is replayed) and then polls the file forever, emitting every newly completed
// line and suspending between polls that found nothing. The sequence never
// ends on its own; the caller stops it by cancelling the context, by
// breaking out of the iteration, or by closing the Tail.
//
// The same loop is exposed three ways:
//
//   - Lines and Follow run it on the caller's goroutine (blocking).
//   - Stream runs it on its own goroutine and delivers lines on a channel,
//     so the consumer can select on other work meanwhile (cooperative).
//   - Run wraps Follow and always closes the Tail afterwards (scoped).
//
// How the loop waits between polls is a Sleeper strategy, shared by all
// three forms.
package follow

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/follow/internal/tracked"
)

// Common errors returned by Tail operations.
var (
	ErrClosed           = errors.New("tail is closed")
	ErrNegativeLines    = errors.New("line count must not be negative")
	ErrNegativeInterval = errors.New("poll interval must not be negative")
)

// Tail follows one file path.
//
// A Tail is not safe for concurrent iteration. Close may be called from any
// goroutine while a Stream is running; while Lines or Follow is running,
// cancel its context instead and Close once it returned.
type Tail struct {
	id      uuid.UUID
	file    *tracked.File
	config  Config
	sleeper Sleeper
	logger  *slog.Logger

	// Seed state. The seed is produced once per Tail.
	seeded  bool
	pending []string

	closed atomic.Bool

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Tail for path. The file does not need to exist yet.
func New(path string, opts ...Option) (*Tail, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Lines < 0 {
		return nil, ErrNegativeLines
	}
	if config.PollInterval < 0 {
		return nil, ErrNegativeInterval
	}

	id := config.SessionID
	if id == uuid.Nil {
		id = uuid.New()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("session", id.String(), "path", path)

	t := &Tail{
		id:     id,
		config: config,
		logger: logger,
		file: tracked.New(path,
			tracked.WithOpenOptions(config.OpenOptions),
			tracked.WithLogger(logger),
		),
	}

	switch {
	case config.Sleeper != nil:
		t.sleeper = config.Sleeper
	case config.Notify:
		s, err := NewNotifySleeper(path, logger)
		if err != nil {
			logger.Warn("file events unavailable, polling only", "error", err)
			t.sleeper = TimerSleeper{}
		} else {
			t.sleeper = s
		}
	default:
		t.sleeper = TimerSleeper{}
	}

	return t, nil
}

// ID returns the session identifier, unique per Tail.
func (t *Tail) ID() uuid.UUID {
	return t.id
}

// Path returns the followed path.
func (t *Tail) Path() string {
	return t.file.Path()
}

// Follow calls fn for every line until ctx is done, fn returns an error, or
// the Tail is closed. It returns that error.
func (t *Tail) Follow(ctx context.Context, fn func(line string) error) error {
	for {
		line, err := t.next(ctx)
		if err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
}

// Lines returns an iterator over the followed lines. Iteration blocks
// between polls and ends only when the caller stops, ctx is done, or the
// Tail is closed. Iterating again resumes where the previous iteration
// stopped.
func (t *Tail) Lines(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			line, err := t.next(ctx)
			if err != nil {
				return
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Stream follows the file on a new goroutine and delivers lines on the
// returned channel. The channel is closed once ctx is done or the Tail is
// closed.
func (t *Tail) Stream(ctx context.Context) <-chan string {
	out := make(chan string)

	t.mu.Lock()
	if t.closed.Load() {
		t.mu.Unlock()
		close(out)
		return out
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancels = append(t.cancels, cancel)
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer close(out)
		defer cancel()

		for {
			line, err := t.next(ctx)
			if err != nil {
				t.logger.Debug("stream stopped", "reason", err)
				return
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Close stops running streams and releases the file handle. It is safe to
// call repeatedly.
func (t *Tail) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.mu.Lock()
	cancels := t.cancels
	t.cancels = nil
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	t.wg.Wait()

	// Close resets the position, so log where the session ended first.
	offset := t.file.Offset()

	var errs []error
	if err := t.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if c, ok := t.sleeper.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	t.logger.Debug("tail closed", "offset", offset)
	return errors.Join(errs...)
}

// next returns the next line, waiting as long as it takes. It fails only
// when ctx is done, the sleeper gives up, or the Tail is closed.
func (t *Tail) next(ctx context.Context) (string, error) {
	if t.closed.Load() {
		return "", ErrClosed
	}

	if !t.seeded {
		t.seeded = true
		if !t.config.ReadAll {
			t.pending = t.file.ReadLastLines(t.config.Lines, t.config.BufferLength)
		}
		t.logger.Debug("seeded",
			"lines", len(t.pending),
			"offset", t.file.Offset(),
			"file", t.file.Identity().String(),
		)
	}

	for {
		if t.closed.Load() {
			return "", ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if len(t.pending) > 0 {
			line := t.pending[0]
			t.pending = t.pending[1:]
			return line, nil
		}

		if line, ok := t.file.ReadLine(); ok {
			return line, nil
		}

		if err := t.sleeper.Sleep(ctx, t.config.PollInterval); err != nil {
			return "", err
		}
	}
}
