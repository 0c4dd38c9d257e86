package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of the environment variables follow reads.
const EnvPrefix = "FOLLOW_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // e.g. "FOLLOW_"
	mapping map[string]string // env var -> config path
	text    map[string]bool   // config paths whose values are kept verbatim
}

// NewEnvLoader creates an environment loader with the default mappings.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		text:    defaultTextPaths(),
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

// defaultEnvMapping maps the short variable names to their settings.
// Anything else under the prefix goes through envToPath.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"FOLLOW_PATH":          "follow.path",
		"FOLLOW_LINES":         "follow.lines",
		"FOLLOW_READ_ALL":      "follow.readAll",
		"FOLLOW_POLL_INTERVAL": "follow.pollInterval",
		"FOLLOW_BUFFER_LENGTH": "follow.bufferLength",
		"FOLLOW_NOTIFY":        "follow.notify",
		"FOLLOW_LOG_LEVEL":     "logging.level",
		"FOLLOW_LOG_FORMAT":    "logging.format",
		"FOLLOW_LOG_FILE":      "logging.file",
		"FOLLOW_SINK":          "output.sink",
		"FOLLOW_PREFIX":        "output.prefix",
		"FOLLOW_COLOR":         "output.color",
		"FOLLOW_KAFKA_BROKERS": "output.kafka.brokers",
		"FOLLOW_KAFKA_TOPIC":   "output.kafka.topic",
	}
}

// defaultTextPaths lists the string settings. A file may be called
// 20261018 and a topic 42, so these never go through parseValue.
func defaultTextPaths() map[string]bool {
	return map[string]bool{
		"follow.path":        true,
		"logging.level":      true,
		"logging.format":     true,
		"logging.file":       true,
		"output.sink":        true,
		"output.color":       true,
		"output.kafka.topic": true,
	}
}

// Load reads the process environment and returns a configuration map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	vars := make(map[string]string)
	for _, env := range os.Environ() {
		if name, value, ok := strings.Cut(env, "="); ok {
			vars[name] = value
		}
	}
	return l.LoadVars(vars), nil
}

// LoadVars builds a configuration map from vars as if they were the
// environment. Variables outside the mapping and without the prefix are
// ignored.
func (l *EnvLoader) LoadVars(vars map[string]string) map[string]any {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := vars[env]; ok {
			SetByPath(config, path, parseValue(val))
		}
	}

	for name, value := range vars {
		if !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		path := l.envToPath(name)
		if path == "" {
			continue
		}
		SetByPath(config, path, l.value(path, value))
	}

	return config
}

func (l *EnvLoader) value(path, raw string) any {
	if l.text[path] {
		return raw
	}
	return parseValue(raw)
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts FOLLOW_OUTPUT_KAFKA_WRITE_TIMEOUT to
// output.kafka.writeTimeout: the first word is the section, a known
// subsection follows it, and the rest is camelCased.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	if name == "" {
		return ""
	}

	parts := strings.Split(strings.ToLower(name), "_")
	path := []string{parts[0]}
	parts = parts[1:]

	if len(parts) > 1 && subsections[path[0]+"."+parts[0]] {
		path = append(path, parts[0])
		parts = parts[1:]
	}

	if len(parts) > 0 {
		var b strings.Builder
		b.WriteString(parts[0])
		for _, p := range parts[1:] {
			if p == "" {
				continue
			}
			b.WriteString(strings.ToUpper(p[:1]) + p[1:])
		}
		path = append(path, b.String())
	}

	return strings.Join(path, ".")
}

// subsections lists nested tables that envToPath keeps as their own level.
var subsections = map[string]bool{
	"output.kafka": true,
}

// parseValue converts an environment string into the most specific type
// it reads as: bool, int, float, duration, JSON, or string. Digits stay
// numbers, so FOLLOW_LINES=1 is the integer 1.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}
