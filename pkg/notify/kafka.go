// Package notify forwards data-ready events to external consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtnitsch/codehub/pkg/records"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes each event as a JSON message keyed by stage.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (kn *KafkaNotifier) Notify(ctx context.Context, ev records.Event) error {
	msg, err := eventMessage(ev)
	if err != nil {
		return err
	}
	if err := kn.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Stage, err)
	}
	return nil
}

func (kn *KafkaNotifier) Close() error {
	return kn.writer.Close()
}

func eventMessage(ev records.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.Stage),
		Value: value,
		Time:  ev.At,
	}, nil
}
