package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fjod/go_cart/storefront/internal/query"
)

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer applies invalidations published by other instances.
type Consumer struct {
	reader     Reader
	cache      *query.Client
	source     string
	retryDelay time.Duration
}

// NewConsumer joins a consumer group of its own so that every instance sees
// every invalidation.
func NewConsumer(cache *query.Client, source, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "storefront-" + source,
		MaxBytes: 1e6,
	})
	return NewConsumerWithReader(reader, cache, source)
}

func NewConsumerWithReader(r Reader, cache *query.Client, source string) *Consumer {
	return &Consumer{reader: r, cache: cache, source: source, retryDelay: time.Second}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.processMessage(ctx); err != nil {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		slog.Error("error closing kafka reader", "error", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		slog.ErrorContext(ctx, "error reading invalidation", "error", err)
		return err
	}
	c.apply(ctx, m)
	return nil
}

func (c *Consumer) apply(ctx context.Context, m kafka.Message) {
	var event Invalidation
	if err := json.Unmarshal(m.Value, &event); err != nil {
		slog.WarnContext(ctx, "error parsing invalidation", "offset", m.Offset, "error", err)
		return
	}
	if event.Source == c.source {
		return
	}
	for _, root := range event.Roots {
		c.cache.Invalidate(root)
	}
	slog.DebugContext(ctx, "applied remote invalidation", "source", event.Source, "roots", event.Roots)
}
