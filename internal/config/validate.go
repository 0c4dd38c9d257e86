package config

import (
	"errors"
	"maps"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	sinks      = []string{SinkStdout, SinkKafka}
	colorModes = []string{ColorAuto, ColorAlways, ColorNever}
)

// Validate reports every setting that cannot be used, including values of
// the wrong type. The returned error matches ErrValidationFailed or
// ErrTypeMismatch per problem.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path string, value any, msg string) {
		errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
	}

	f := c.Follow()
	if f.Path == "" {
		invalid("follow.path", f.Path, "a file to follow is required")
	}
	if f.Lines < 0 {
		invalid("follow.lines", f.Lines, "must not be negative")
	}
	if f.PollInterval < 0 {
		invalid("follow.pollInterval", f.PollInterval, "must not be negative")
	}
	if f.BufferLength < 0 {
		invalid("follow.bufferLength", f.BufferLength, "must not be negative")
	}

	l := c.Logging()
	if !slices.Contains(logLevels, l.Level) {
		invalid("logging.level", l.Level, "must be one of debug, info, warn, error")
	}
	if !slices.Contains(logFormats, l.Format) {
		invalid("logging.format", l.Format, "must be text or json")
	}

	o := c.Output()
	if !slices.Contains(sinks, o.Sink) {
		invalid("output.sink", o.Sink, "must be stdout or kafka")
	}
	if !slices.Contains(colorModes, o.Color) {
		invalid("output.color", o.Color, "must be auto, always or never")
	}
	if o.Sink == SinkKafka {
		if len(o.Kafka.Brokers) == 0 {
			invalid("output.kafka.brokers", o.Kafka.Brokers, "required by the kafka sink")
		}
		if o.Kafka.Topic == "" {
			invalid("output.kafka.topic", o.Kafka.Topic, "required by the kafka sink")
		}
		if o.Kafka.WriteTimeout < 0 {
			invalid("output.kafka.writeTimeout", o.Kafka.WriteTimeout, "must not be negative")
		}
	}

	configErrs := c.ConfigErrors()
	for _, path := range slices.Sorted(maps.Keys(configErrs)) {
		errs = append(errs, configErrs[path])
	}

	return errors.Join(errs...)
}
