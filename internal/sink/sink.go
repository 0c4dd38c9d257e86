// Package sink delivers followed lines to their destination.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/follow/internal/config"
)

// ErrUnknownSink is returned by New for an unsupported sink name.
var ErrUnknownSink = errors.New("unknown sink")

// Record is one followed line together with where and when it was read.
type Record struct {
	SessionID uuid.UUID
	Path      string
	// Line is the line as read, terminator included.
	Line string
	Time time.Time
}

// Sink consumes records. Write is called from a single goroutine.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// New builds the sink selected by cfg. Stdout-style sinks write to w.
func New(cfg config.OutputConfig, w io.Writer) (Sink, error) {
	switch cfg.Sink {
	case "", config.SinkStdout:
		return NewStdoutSink(w, WithPrefix(cfg.Prefix), WithColor(cfg.Color)), nil
	case config.SinkKafka:
		return NewKafkaSink(cfg.Kafka)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, cfg.Sink)
	}
}
