package config

import (
	"errors"
	"testing"
	"time"
)

func TestSections_TypeErrorFallsBack(t *testing.T) {
	c := New(Default(), map[string]any{
		"follow": map[string]any{
			"lines":        "many",
			"pollInterval": "often",
		},
		"output": map[string]any{"prefix": "yes please"},
	})

	f := c.Follow()
	if f.Lines != 10 {
		t.Errorf("Lines = %d, want default 10", f.Lines)
	}
	if f.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want default 1s", f.PollInterval)
	}
	if c.Output().Prefix {
		t.Error("Prefix = true, want default false")
	}

	errs := c.ConfigErrors()
	for _, path := range []string{"follow.lines", "follow.pollInterval", "output.prefix"} {
		if !errors.Is(errs[path], ErrTypeMismatch) {
			t.Errorf("ConfigErrors()[%q] = %v, want type mismatch", path, errs[path])
		}
	}

	c.ClearConfigErrors()
	if c.ConfigErrors() != nil {
		t.Error("ConfigErrors() should be nil after clear")
	}
}

func TestSections_MissingKeysUseDefaults(t *testing.T) {
	c := New()

	if got := c.Follow(); got.Lines != 10 || got.BufferLength != 4096 {
		t.Errorf("Follow() = %+v, want defaults", got)
	}
	if got := c.Logging(); got.Level != "info" || got.Format != "text" {
		t.Errorf("Logging() = %+v, want defaults", got)
	}
	if got := c.Output(); got.Sink != SinkStdout || got.Kafka.WriteTimeout != 10*time.Second {
		t.Errorf("Output() = %+v, want defaults", got)
	}
	if c.ConfigErrors() != nil {
		t.Error("missing keys must not be recorded as errors")
	}
}

func TestSections_Snapshot(t *testing.T) {
	c := New(map[string]any{
		"output": map[string]any{"kafka": map[string]any{"brokers": []string{"a:1"}}},
	})

	o := c.Output()
	o.Kafka.Brokers[0] = "changed"

	if got := c.Output().Kafka.Brokers[0]; got != "a:1" {
		t.Errorf("Brokers[0] = %q, section must be a snapshot", got)
	}
}
