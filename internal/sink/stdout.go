package sink

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/dshills/follow/internal/config"
)

// StdoutSink writes each line unchanged, optionally after a "<path>: "
// prefix.
type StdoutSink struct {
	w      io.Writer
	prefix bool
	color  string
	style  lipgloss.Style
}

// StdoutOption configures a StdoutSink.
type StdoutOption func(*StdoutSink)

// WithPrefix writes the followed path before every line.
func WithPrefix(enabled bool) StdoutOption {
	return func(s *StdoutSink) {
		s.prefix = enabled
	}
}

// WithColor sets the color mode of the prefix: config.ColorAuto,
// config.ColorAlways or config.ColorNever.
func WithColor(mode string) StdoutOption {
	return func(s *StdoutSink) {
		s.color = mode
	}
}

// NewStdoutSink creates a sink writing to w.
func NewStdoutSink(w io.Writer, opts ...StdoutOption) *StdoutSink {
	s := &StdoutSink{w: w, color: config.ColorAuto}
	for _, opt := range opts {
		opt(s)
	}

	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(colorProfile(w, s.color, r.ColorProfile()))
	s.style = r.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	return s
}

// colorProfile resolves mode for w. Auto keeps the detected profile on a
// terminal and turns color off everywhere else.
func colorProfile(w io.Writer, mode string, detected termenv.Profile) termenv.Profile {
	switch mode {
	case config.ColorNever:
		return termenv.Ascii
	case config.ColorAlways:
		if detected == termenv.Ascii {
			return termenv.ANSI
		}
		return detected
	default:
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return detected
		}
		return termenv.Ascii
	}
}

// Write writes rec.Line, preceded by the styled path when prefixing.
func (s *StdoutSink) Write(_ context.Context, rec Record) error {
	line := rec.Line
	if s.prefix {
		line = s.style.Render(rec.Path) + ": " + line
	}
	_, err := io.WriteString(s.w, line)
	return err
}

// Close does nothing; the writer belongs to the caller.
func (s *StdoutSink) Close() error {
	return nil
}
