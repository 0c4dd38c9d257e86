package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dshills/follow/internal/config"
)

// Errors returned by NewKafkaSink.
var (
	ErrNoBrokers = errors.New("kafka sink needs at least one broker")
	ErrNoTopic   = errors.New("kafka sink needs a topic")
)

// messageWriter is the part of kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each record as a JSON message keyed by session, so
// the lines of one session stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
}

// message is the JSON value of a published record. The line travels
// without its terminator; the message boundary delimits it.
type message struct {
	Session string    `json:"session"`
	Path    string    `json:"path"`
	Line    string    `json:"line"`
	Time    time.Time `json:"time"`
}

// NewKafkaSink creates a sink for cfg. No connection is made until the
// first write.
func NewKafkaSink(cfg config.KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}

	// Write sends one message and blocks until it is acknowledged, so a
	// batch of one is flushed right away instead of after BatchTimeout.
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    1,
	}
	if cfg.WriteTimeout > 0 {
		w.WriteTimeout = cfg.WriteTimeout
	}

	return &KafkaSink{writer: w}, nil
}

// Write publishes rec and waits for the brokers to acknowledge it.
func (k *KafkaSink) Write(ctx context.Context, rec Record) error {
	data, err := json.Marshal(message{
		Session: rec.SessionID.String(),
		Path:    rec.Path,
		Line:    strings.TrimRight(rec.Line, "\r\n"),
		Time:    rec.Time,
	})
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.SessionID.String()),
		Value: data,
		Time:  rec.Time,
	})
	if err != nil {
		return fmt.Errorf("publishing line: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
