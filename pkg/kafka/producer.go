package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig returns defaults for a synchronous producer.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes events with trace context in the message headers.
type Producer struct {
	writer  messageWriter
	brokers []string
	logger  *slog.Logger
}

// NewProducer creates a producer. It does not connect until the first write.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w, brokers: cfg.Brokers, logger: logger}
}

// Publish sends event to topic keyed by its aggregate id, so events of one
// aggregate keep their order.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	msg, err := event.message(topic)
	if err != nil {
		return err
	}
	otel.GetTextMapPropagator().Inject(ctx, NewHeaderCarrier(&msg.Headers))

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	observePublish(topic, start, err)
	if err != nil {
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// Ping checks broker connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers succeeds if at least one broker answers a metadata request.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
