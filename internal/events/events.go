// Package events keeps cached views consistent across storefront instances:
// after a local write invalidates views, the same roots are published on
// Kafka and every other instance invalidates them too.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fjod/go_cart/storefront/internal/query"
)

const DefaultTopic = "storefront-invalidations"

const eventTypeInvalidate = "views.invalidated"

// Invalidation is the message body published for each invalidation.
type Invalidation struct {
	Source string    `json:"source"`
	Roots  []string  `json:"roots"`
	At     time.Time `json:"at"`
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer Writer
	source string
	now    func() time.Time
}

func NewPublisher(source, topic string, brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(w, source)
}

func NewPublisherWithWriter(w Writer, source string) *Publisher {
	return &Publisher{writer: w, source: source, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, roots ...string) error {
	payload, err := json.Marshal(Invalidation{Source: p.source, Roots: roots, At: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal invalidation failed: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(p.source),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeInvalidate)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish invalidation failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Broadcaster invalidates locally and then tells the other instances.
// A nil publisher keeps invalidation local.
type Broadcaster struct {
	cache     *query.Client
	publisher *Publisher
}

func NewBroadcaster(cache *query.Client, publisher *Publisher) *Broadcaster {
	return &Broadcaster{cache: cache, publisher: publisher}
}

func (b *Broadcaster) InvalidateViews(ctx context.Context, roots ...string) {
	for _, root := range roots {
		b.cache.Invalidate(root)
	}
	if b.publisher == nil || len(roots) == 0 {
		return
	}
	if err := b.publisher.Publish(ctx, roots...); err != nil {
		slog.WarnContext(ctx, "failed to broadcast invalidation", "roots", roots, "error", err)
	}
}
