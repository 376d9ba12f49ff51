package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type Message struct {
	Topic string
	Key   string
	Value []byte
}

type Handler func(ctx context.Context, msg Message) error

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// Consumer reads a set of topics as one consumer group and commits every
// message after its handler returns.
type Consumer struct {
	reader *kafka.Reader
	log    *slog.Logger
}

func NewConsumer(cfg ConsumerConfig, l *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			GroupID:        cfg.GroupID,
			GroupTopics:    cfg.Topics,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        500 * time.Millisecond,
			CommitInterval: 0,
		}),
		log: l,
	}
}

func (c *Consumer) Run(ctx context.Context, h Handler) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka: fetch failed: %w", err)
		}

		if err := h(ctx, Message{Topic: m.Topic, Key: string(m.Key), Value: m.Value}); err != nil {
			c.log.Error("handle_event_failed", "topic", m.Topic, "offset", m.Offset, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka: commit failed: %w", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
