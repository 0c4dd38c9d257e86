package follow

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerSleeper_Elapses(t *testing.T) {
	start := time.Now()
	if err := (TimerSleeper{}).Sleep(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Sleep returned after %v, want >= 10ms", elapsed)
	}
}

func TestTimerSleeper_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := (TimerSleeper{}).Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Sleep took %v after cancel", elapsed)
	}
}

func TestTimerSleeper_ZeroDuration(t *testing.T) {
	if err := (TimerSleeper{}).Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (TimerSleeper{}).Sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep(0) on cancelled ctx = %v, want context.Canceled", err)
	}
}

// A zero interval must still let other goroutines run on a single P.
func TestSleepers_ZeroDurationYields(t *testing.T) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(1))

	sleepers := map[string]Sleeper{
		"timer":    TimerSleeper{},
		"blocking": BlockingSleeper{},
	}
	if s, err := NewNotifySleeper(filepath.Join(t.TempDir(), "quiet.log"), nil); err == nil {
		defer s.Close()
		sleepers["notify"] = s
	}

	for name, s := range sleepers {
		var ran atomic.Bool
		go ran.Store(true)

		for i := 0; i < 1000 && !ran.Load(); i++ {
			if err := s.Sleep(context.Background(), 0); err != nil {
				t.Fatalf("%s: Sleep(0) = %v", name, err)
			}
		}
		if !ran.Load() {
			t.Errorf("%s: Sleep(0) never yielded to another goroutine", name)
		}
	}
}

func TestBlockingSleeper(t *testing.T) {
	start := time.Now()
	if err := (BlockingSleeper{}).Sleep(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Sleep returned after %v, want >= 10ms", elapsed)
	}
}

func TestBlockingSleeper_IgnoresCancelUntilElapsed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := (BlockingSleeper{}).Sleep(ctx, 20*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep returned after %v, want full 20ms", elapsed)
	}
}

func TestSleeperFunc(t *testing.T) {
	var got time.Duration
	s := SleeperFunc(func(_ context.Context, d time.Duration) error {
		got = d
		return errStopSleep
	})

	if err := s.Sleep(context.Background(), 42*time.Millisecond); !errors.Is(err, errStopSleep) {
		t.Errorf("Sleep error = %v, want errStopSleep", err)
	}
	if got != 42*time.Millisecond {
		t.Errorf("duration = %v, want 42ms", got)
	}
}

func TestNotifySleeper_TimerBounds(t *testing.T) {
	dir := t.TempDir()
	s, err := NewNotifySleeper(dir+"/quiet.log", nil)
	if err != nil {
		t.Skipf("file events unavailable: %v", err)
	}
	defer s.Close()

	start := time.Now()
	if err := s.Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Sleep took %v, timer should bound it", elapsed)
	}
}

func TestNotifySleeper_Cancel(t *testing.T) {
	dir := t.TempDir()
	s, err := NewNotifySleeper(dir+"/quiet.log", nil)
	if err != nil {
		t.Skipf("file events unavailable: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep error = %v, want context.Canceled", err)
	}
}

func TestNotifySleeper_AfterClose(t *testing.T) {
	dir := t.TempDir()
	s, err := NewNotifySleeper(dir+"/quiet.log", nil)
	if err != nil {
		t.Skipf("file events unavailable: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Closed channels must not turn into a busy loop or an error.
	for range 3 {
		if err := s.Sleep(context.Background(), 5*time.Millisecond); err != nil {
			t.Fatalf("Sleep after Close: %v", err)
		}
	}
}

func TestNotifySleeper_CloseLogsStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := NewNotifySleeper(filepath.Join(t.TempDir(), "quiet.log"), logger)
	if err != nil {
		t.Skipf("file events unavailable: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"file watcher closed", "events=0", "dropped=0", "errors=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
