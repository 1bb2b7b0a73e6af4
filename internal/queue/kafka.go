// Package queue publishes weather alert events to Kafka.
package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"weatherdash/internal/modules/weather/alerts"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a Kafka writer. Events are keyed by place so alerts for the
// same place stay ordered on one partition.
type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (p *Producer) Name() string { return "kafka" }

// PublishAlerts implements alerts.Sink.
func (p *Producer) PublishAlerts(ctx context.Context, ev alerts.Event) error {
	value, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}

	kinds := alerts.Kinds(ev.Alerts)
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	msg := kafka.Message{
		Key:   []byte(strings.ToLower(ev.Place)),
		Value: value,
		Time:  ev.IssuedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "alert-kinds", Value: []byte(strings.Join(names, ","))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
