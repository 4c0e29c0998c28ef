package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
)

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer sends change events to Kafka
type Producer struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewProducer creates a new Kafka producer for the change topic
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}, logger)
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(writer MessageWriter, logger *zap.Logger) *Producer {
	return &Producer{writer: writer, logger: logger}
}

// SendChange writes the event keyed by row key, so all changes to one row land on one partition.
func (p *Producer) SendChange(ctx context.Context, event events.ChangeEvent) error {
	data, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "table", Value: []byte(event.Table)},
			{Key: "type", Value: []byte(event.Type)},
		},
		Time: event.CommitTimestamp,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	p.logger.Debug("sent change to kafka",
		zap.String("table", string(event.Table)),
		zap.String("type", string(event.Type)),
		zap.String("key", event.Key),
	)
	return nil
}

// Close closes the Kafka writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
