package follow

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/follow/internal/tracked"
)

// DefaultPollInterval is how long a Tail waits after a poll found nothing.
const DefaultPollInterval = time.Second

// Config holds Tail configuration options.
type Config struct {
	// Lines is the number of trailing lines emitted before following.
	// Ignored when ReadAll is set.
	// Default: 0
	Lines int

	// ReadAll replays the whole file from the start before following.
	// Default: false
	ReadAll bool

	// PollInterval is the delay between polls that found no complete line.
	// Default: 1s
	PollInterval time.Duration

	// BufferLength is the backward window increment used to find the
	// trailing lines.
	// Default: 4096
	BufferLength int

	// OpenOptions are forwarded to every open of the path.
	OpenOptions tracked.OpenOptions

	// Notify wakes the poll loop early on file system events.
	// Polling remains the baseline; events only shorten the wait.
	// Default: false
	Notify bool

	// Sleeper suspends the loop between empty polls. It takes precedence
	// over Notify.
	// Default: TimerSleeper
	Sleeper Sleeper

	// Logger receives debug and rotation messages.
	// Default: discard
	Logger *slog.Logger

	// SessionID identifies the Tail in logs and downstream records.
	// Default: a random UUID
	SessionID uuid.UUID
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		BufferLength: tracked.DefaultBufferLength,
	}
}

// Option configures a Tail.
type Option func(*Config)

// WithLines sets the number of trailing lines to emit first.
func WithLines(n int) Option {
	return func(c *Config) {
		c.Lines = n
	}
}

// WithReadAll replays the file from its start instead of seeding.
func WithReadAll(readAll bool) Option {
	return func(c *Config) {
		c.ReadAll = readAll
	}
}

// WithPollInterval sets the delay between empty polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// WithBufferLength sets the backward window increment.
func WithBufferLength(n int) Option {
	return func(c *Config) {
		c.BufferLength = n
	}
}

// WithOpenOptions sets the options forwarded to the open call.
func WithOpenOptions(o tracked.OpenOptions) Option {
	return func(c *Config) {
		c.OpenOptions = o
	}
}

// WithNotify enables file system event wake-ups.
func WithNotify(enabled bool) Option {
	return func(c *Config) {
		c.Notify = enabled
	}
}

// WithSleeper sets the suspension strategy.
func WithSleeper(s Sleeper) Option {
	return func(c *Config) {
		c.Sleeper = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithSessionID sets the session identifier instead of a random one.
func WithSessionID(id uuid.UUID) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}
