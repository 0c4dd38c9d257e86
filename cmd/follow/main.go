// Package main is the entry point for the follow command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/follow/internal/config"
	"github.com/dshills/follow/internal/config/loader"
	"github.com/dshills/follow/internal/follow"
	"github.com/dshills/follow/internal/logging"
	"github.com/dshills/follow/internal/sink"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return runWith(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// runWith runs the command and returns its exit code.
func runWith(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseFlags(args, stdout, stderr)
	if !ok {
		return code
	}

	cfg, err := config.Load(config.LoadOptions{
		File:      opts.configPath,
		EnvFile:   opts.envFile,
		Overrides: opts.overrides,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading configuration: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid configuration:\n%v\n", err)
		return 1
	}

	logger, logCloser, err := logging.New(cfg.Logging(), stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	out, err := sink.New(cfg.Output(), stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create sink: %v\n", err)
		return 1
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("closing sink", "error", err)
		}
	}()

	fc := cfg.Follow()
	session := uuid.New()
	logger.Debug("following",
		"session", session.String(),
		"path", fc.Path,
		"lines", fc.Lines,
		"readAll", fc.ReadAll,
		"interval", fc.PollInterval,
		"sink", cfg.Output().Sink,
	)

	err = follow.Run(ctx, fc.Path, func(line string) error {
		return out.Write(ctx, sink.Record{
			SessionID: session,
			Path:      fc.Path,
			Line:      line,
			Time:      time.Now(),
		})
	},
		follow.WithSessionID(session),
		follow.WithLines(fc.Lines),
		follow.WithReadAll(fc.ReadAll),
		follow.WithPollInterval(fc.PollInterval),
		follow.WithBufferLength(fc.BufferLength),
		follow.WithNotify(fc.Notify),
		follow.WithLogger(logger),
	)

	// Following only ends by interruption or failure.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0
	}
	logger.Error("follow stopped", "error", err)
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

type options struct {
	configPath string
	envFile    string
	overrides  map[string]any
}

// flagPaths maps every flag that overrides a setting to its config path.
var flagPaths = map[string]string{
	"lines":         "follow.lines",
	"n":             "follow.lines",
	"from-start":    "follow.readAll",
	"a":             "follow.readAll",
	"interval":      "follow.pollInterval",
	"s":             "follow.pollInterval",
	"buffer":        "follow.bufferLength",
	"notify":        "follow.notify",
	"prefix":        "output.prefix",
	"color":         "output.color",
	"sink":          "output.sink",
	"kafka-brokers": "output.kafka.brokers",
	"kafka-topic":   "output.kafka.topic",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-file":      "logging.file",
}

// parseFlags parses args. When ok is false the command is finished and
// code is its exit code.
func parseFlags(args []string, stdout, stderr io.Writer) (opts options, code int, ok bool) {
	fs := flag.NewFlagSet("follow", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion, showHelp bool

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.envFile, "env-file", ".env", "Path to dotenv file (skipped if missing)")

	lines := fs.Int("lines", 10, "Number of trailing lines to print first")
	fs.IntVar(lines, "n", 10, "Number of trailing lines (shorthand)")
	fromStart := fs.Bool("from-start", false, "Print the whole file, then follow")
	fs.BoolVar(fromStart, "a", false, "Print the whole file (shorthand)")
	interval := fs.Duration("interval", time.Second, "Delay between polls that found nothing")
	fs.DurationVar(interval, "s", time.Second, "Poll delay (shorthand)")
	fs.Int("buffer", 4096, "Backward read window increment in bytes")
	fs.Bool("notify", false, "Wake up early on file system events")

	fs.Bool("prefix", false, "Prefix every line with the file path")
	fs.String("color", config.ColorAuto, "Color the prefix (auto, always, never)")
	fs.String("sink", config.SinkStdout, "Where lines go (stdout, kafka)")
	fs.String("kafka-brokers", "", "Comma separated Kafka broker addresses")
	fs.String("kafka-topic", "", "Kafka topic")

	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "text", "Log format (text, json)")
	fs.String("log-file", "", "Write diagnostics to this file instead of stderr")

	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "follow - print lines appended to a file, across rotations\n\n")
		fmt.Fprintf(w, "Usage: follow [options] FILE\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  follow /var/log/app.log              Last 10 lines, then new ones\n")
		fmt.Fprintf(w, "  follow -n 0 -s 200ms app.log         Only new lines, polled every 200ms\n")
		fmt.Fprintf(w, "  follow -a -prefix app.log            Whole file with path prefixes\n")
		fmt.Fprintf(w, "  follow -sink kafka -kafka-brokers localhost:9092 -kafka-topic logs app.log\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if showHelp {
		fs.SetOutput(stdout)
		fs.Usage()
		return opts, 0, false
	}

	if showVersion {
		fmt.Fprintf(stdout, "follow %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, false
	}

	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "Error: expected one file, got %d\n", fs.NArg())
		fs.Usage()
		return opts, 2, false
	}

	// Only flags given on the command line override lower layers.
	opts.overrides = make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		path, ok := flagPaths[f.Name]
		if !ok {
			return
		}
		if g, ok := f.Value.(flag.Getter); ok {
			loader.SetByPath(opts.overrides, path, g.Get())
		}
	})
	if fs.NArg() == 1 {
		loader.SetByPath(opts.overrides, "follow.path", fs.Arg(0))
	}

	return opts, 0, true
}
