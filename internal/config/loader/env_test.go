package loader

import (
	"testing"
	"time"
)

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("FOLLOW_LINES", "2")
	t.Setenv("FOLLOW_LOG_LEVEL", "debug")
	t.Setenv("FOLLOW_POLL_INTERVAL", "250ms")
	t.Setenv("FOLLOW_NOTIFY", "yes")

	config, err := NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := GetByPath(config, "logging.level"); !ok || val != "debug" {
		t.Errorf("logging.level = %v, want 'debug'", val)
	}
	if val, ok := GetByPath(config, "follow.lines"); !ok || val != int64(2) {
		t.Errorf("follow.lines = %v (%T), want 2", val, val)
	}
	if val, ok := GetByPath(config, "follow.pollInterval"); !ok || val != 250*time.Millisecond {
		t.Errorf("follow.pollInterval = %v, want 250ms", val)
	}
	if val, ok := GetByPath(config, "follow.notify"); !ok || val != true {
		t.Errorf("follow.notify = %v, want true", val)
	}
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	t.Setenv("FOLLOW_OUTPUT_KAFKA_WRITE_TIMEOUT", "2s")
	t.Setenv("FOLLOW_CUSTOM_SETTING", "value")

	config, err := NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := GetByPath(config, "output.kafka.writeTimeout"); !ok || val != 2*time.Second {
		t.Errorf("output.kafka.writeTimeout = %v, want 2s", val)
	}
	if val, ok := GetByPath(config, "custom.setting"); !ok || val != "value" {
		t.Errorf("custom.setting = %v, want 'value'", val)
	}
}

func TestEnvLoader_EmptyValueIsSet(t *testing.T) {
	t.Setenv("FOLLOW_LOG_FILE", "")

	config, _ := NewEnvLoader(EnvPrefix).Load()
	if val, ok := GetByPath(config, "logging.file"); !ok || val != "" {
		t.Errorf("logging.file = %v, %v; want empty string, set", val, ok)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	loader := NewEnvLoader(EnvPrefix)

	tests := []struct {
		env      string
		expected string
	}{
		{"FOLLOW_FOLLOW_BUFFER_LENGTH", "follow.bufferLength"},
		{"FOLLOW_LOGGING_FORMAT", "logging.format"},
		{"FOLLOW_OUTPUT_KAFKA_TOPIC", "output.kafka.topic"},
		{"FOLLOW_OUTPUT_KAFKA", "output.kafka"},
		{"FOLLOW_SIMPLE", "simple"},
		{"FOLLOW_DEEP_NESTED_PATH", "deep.nestedPath"},
		{"FOLLOW_", ""},
	}

	for _, tt := range tests {
		got := loader.envToPath(tt.env)
		if got != tt.expected {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.expected)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"no", false},
		{"off", false},

		{"1", int64(1)},
		{"0", int64(0)},
		{"-10", int64(-10)},

		{"3.14", 3.14},

		{"500ms", 500 * time.Millisecond},
		{"1s", time.Second},

		{"hello", "hello"},
		{"localhost:9092", "localhost:9092"},
		{"", ""},
	}

	for _, tt := range tests {
		got := parseValue(tt.input)
		if got != tt.expected {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)",
				tt.input, got, got, tt.expected, tt.expected)
		}
	}
}

func TestParseValue_JSON(t *testing.T) {
	got, ok := parseValue(`["a:1","b:2"]`).([]any)
	if !ok || len(got) != 2 || got[0] != "a:1" {
		t.Errorf("parseValue(array) = %v", got)
	}

	obj, ok := parseValue(`{"key":"value"}`).(map[string]any)
	if !ok || obj["key"] != "value" {
		t.Errorf("parseValue(object) = %v", obj)
	}
}

func TestEnvLoader_AddRemoveMapping(t *testing.T) {
	loader := NewEnvLoader(EnvPrefix)
	loader.AddMapping("TAIL_TARGET", "follow.path")
	t.Setenv("TAIL_TARGET", "/tmp/x.log")

	config, _ := loader.Load()
	if val, ok := GetByPath(config, "follow.path"); !ok || val != "/tmp/x.log" {
		t.Errorf("follow.path = %v, want /tmp/x.log", val)
	}

	loader.RemoveMapping("TAIL_TARGET")
	config, _ = loader.Load()
	if _, ok := GetByPath(config, "follow.path"); ok {
		t.Error("removed mapping should not be loaded")
	}
}

func TestNewEnvLoaderWithMapping(t *testing.T) {
	loader := NewEnvLoaderWithMapping("MY_", map[string]string{"MY_VAR": "my.setting"})
	t.Setenv("MY_VAR", "test_value")

	config, _ := loader.Load()
	if val, ok := GetByPath(config, "my.setting"); !ok || val != "test_value" {
		t.Errorf("my.setting = %v, want 'test_value'", val)
	}
}

func TestEnvLoader_LoadVars(t *testing.T) {
	config := NewEnvLoader(EnvPrefix).LoadVars(map[string]string{
		"FOLLOW_SINK":          "kafka",
		"FOLLOW_KAFKA_BROKERS": "a:9092,b:9092",
		"FOLLOW_OUTPUT_PREFIX": "true",
		"HOME":                 "/root",
	})

	if val, _ := GetByPath(config, "output.sink"); val != "kafka" {
		t.Errorf("output.sink = %v, want kafka", val)
	}
	if val, _ := GetByPath(config, "output.kafka.brokers"); val != "a:9092,b:9092" {
		t.Errorf("output.kafka.brokers = %v, want raw list", val)
	}
	if val, _ := GetByPath(config, "output.prefix"); val != true {
		t.Errorf("output.prefix = %v, want true", val)
	}
	if _, ok := config["home"]; ok {
		t.Error("unprefixed variables must be ignored")
	}
}

func TestEnvLoader_StringSettingsStayText(t *testing.T) {
	loader := NewEnvLoader(EnvPrefix)

	for _, raw := range []string{"20261018", "1.5", "on", "1h", "[x]"} {
		config := loader.LoadVars(map[string]string{
			"FOLLOW_PATH":         raw,
			"FOLLOW_KAFKA_TOPIC":  raw,
			"FOLLOW_LOGGING_FILE": raw,
		})
		if val, _ := GetByPath(config, "follow.path"); val != raw {
			t.Errorf("follow.path = %v (%T), want %q", val, val, raw)
		}
		if val, _ := GetByPath(config, "logging.file"); val != raw {
			t.Errorf("logging.file = %v (%T), want %q", val, val, raw)
		}
		if val, _ := GetByPath(config, "output.kafka.topic"); val != raw {
			t.Errorf("output.kafka.topic = %v (%T), want %q", val, val, raw)
		}
	}

	// The generic FOLLOW_SECTION_KEY form lands on the same paths.
	config := loader.LoadVars(map[string]string{"FOLLOW_OUTPUT_KAFKA_TOPIC": "7"})
	if val, _ := GetByPath(config, "output.kafka.topic"); val != "7" {
		t.Errorf("output.kafka.topic = %v (%T), want \"7\"", val, val)
	}
}

func TestEnvLoader_Load_NumericTopic(t *testing.T) {
	t.Setenv("FOLLOW_PATH", "20261018")
	t.Setenv("FOLLOW_KAFKA_TOPIC", "42")
	t.Setenv("FOLLOW_LINES", "42")

	config, err := NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, _ := GetByPath(config, "follow.path"); val != "20261018" {
		t.Errorf("follow.path = %v (%T), want \"20261018\"", val, val)
	}
	if val, _ := GetByPath(config, "output.kafka.topic"); val != "42" {
		t.Errorf("output.kafka.topic = %v (%T), want \"42\"", val, val)
	}
	if val, _ := GetByPath(config, "follow.lines"); val != int64(42) {
		t.Errorf("follow.lines = %v (%T), want int64 42", val, val)
	}
}
