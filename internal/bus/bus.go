package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Topic names used by the pipeline.
const (
	TopicMarketData = "market-data"
	TopicSignals    = "signals"
	TopicAnalysis   = "analysis"
)

// Publisher publishes keyed JSON records onto a bus topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// KafkaBus is a thin Kafka-backed bus client. Writers are created lazily
// per topic and share the deterministic key balancer.
type KafkaBus struct {
	brokers []string
	logger  zerolog.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaBus creates a bus client for the given brokers.
func NewKafkaBus(brokers []string) *KafkaBus {
	return &KafkaBus{
		brokers: brokers,
		logger:  log.With().Str("component", "kafka_bus").Logger(),
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish marshals the payload to JSON and writes it to the topic with the
// given key. Delivery is at-most-once from the caller's perspective: a
// failed publish is reported, not queued for retry.
func (b *KafkaBus) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", topic, err)
	}

	w := b.writer(topic)
	if err := w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	b.logger.Debug().Str("topic", topic).Str("key", key).Int("bytes", len(data)).Msg("published")
	return nil
}

func (b *KafkaBus) writer(topic string) *kafka.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(b.brokers...),
		Topic:                  topic,
		Balancer:               KeyBalancer{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	b.writers[topic] = w
	return w
}

// Close closes all topic writers. Called on shutdown; in-flight publishes
// may be lost.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for topic, w := range b.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for %s: %w", topic, err)
		}
	}
	b.writers = make(map[string]*kafka.Writer)
	return firstErr
}

// Consumer reads keyed records from one topic within a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a consumer-group reader for a topic.
func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
	}
}

// Fetch blocks until the next record arrives or ctx is done.
func (c *Consumer) Fetch(ctx context.Context) (key, value []byte, err error) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m.Key, m.Value, nil
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
