package notification

import (
    "context"
    "encoding/json"
    "time"

    "github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
    WriteMessages(ctx context.Context, msgs ...kafka.Message) error
    Close() error
}

// KafkaNotifier publishes notifications as JSON records, keyed by destination
// so events for one card stay ordered within a partition.
type KafkaNotifier struct {
    writer MessageWriter
}

// NewKafkaNotifier wraps a Kafka writer, usually one from infra.NewKafkaWriter.
func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
    return &KafkaNotifier{writer: writer}
}

type event struct {
    Kind        string    `json:"kind"`
    Destination string    `json:"destination"`
    Body        string    `json:"body"`
    Payload     any       `json:"payload,omitempty"`
    OccurredAt  time.Time `json:"occurred_at"`
}

// Send publishes the message.
func (n *KafkaNotifier) Send(ctx context.Context, message Message) error {
    data, err := json.Marshal(event{
        Kind:        message.Kind,
        Destination: message.Destination,
        Body:        message.Body,
        Payload:     message.Payload,
        OccurredAt:  time.Now().UTC(),
    })
    if err != nil {
        return err
    }
    return n.writer.WriteMessages(ctx, kafka.Message{
        Key:   []byte(message.Destination),
        Value: data,
    })
}

// Close flushes pending messages and closes the writer.
func (n *KafkaNotifier) Close() error {
    return n.writer.Close()
}
