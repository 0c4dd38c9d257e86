package config

import (
	"errors"
	"slices"
	"time"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration.

// Sink names accepted by output.sink.
const (
	SinkStdout = "stdout"
	SinkKafka  = "kafka"
)

// Color modes accepted by output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// FollowConfig holds the settings of the follow session itself.
type FollowConfig struct {
	// Path is the followed file.
	Path string

	// Lines is the number of trailing lines emitted before following.
	Lines int

	// ReadAll replays the file from its start instead of seeding.
	ReadAll bool

	// PollInterval is the delay between polls that found nothing.
	PollInterval time.Duration

	// BufferLength is the backward window increment.
	BufferLength int

	// Notify wakes the loop early on file system events.
	Notify bool
}

// LoggingConfig holds diagnostic logging settings.
type LoggingConfig struct {
	// Level is the logging verbosity level ("debug", "info", "warn", "error").
	Level string

	// Format is the log format ("text", "json").
	Format string

	// File is the log file path (empty for stderr).
	File string
}

// OutputConfig selects where followed lines go.
type OutputConfig struct {
	// Sink is SinkStdout or SinkKafka.
	Sink string

	// Prefix writes "<path>: " before each line on stdout.
	Prefix bool

	// Color is ColorAuto, ColorAlways or ColorNever.
	Color string

	Kafka KafkaConfig
}

// KafkaConfig holds the Kafka sink settings.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Follow returns the follow session settings.
func (c *Config) Follow() FollowConfig {
	return FollowConfig{
		Path:         c.getStringOr("follow.path", ""),
		Lines:        c.getIntOr("follow.lines", 10),
		ReadAll:      c.getBoolOr("follow.readAll", false),
		PollInterval: c.getDurationOr("follow.pollInterval", time.Second),
		BufferLength: c.getIntOr("follow.bufferLength", 4096),
		Notify:       c.getBoolOr("follow.notify", false),
	}
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", "info"),
		Format: c.getStringOr("logging.format", "text"),
		File:   c.getStringOr("logging.file", ""),
	}
}

// Output returns the output settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{
		Sink:   c.getStringOr("output.sink", SinkStdout),
		Prefix: c.getBoolOr("output.prefix", false),
		Color:  c.getStringOr("output.color", ColorAuto),
		Kafka: KafkaConfig{
			Brokers:      c.getStringSliceOr("output.kafka.brokers", nil),
			Topic:        c.getStringOr("output.kafka.topic", ""),
			WriteTimeout: c.getDurationOr("output.kafka.writeTimeout", 10*time.Second),
		},
	}
}

// These methods only return the default for ErrSettingNotFound silently.
// Type errors also return the default but are recorded for ConfigErrors.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getStringSliceOr(path string, defaultValue []string) []string {
	v, err := c.GetStringSlice(path)
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			c.recordConfigError(path, err)
		}
		return slices.Clone(defaultValue)
	}
	return slices.Clone(v)
}
