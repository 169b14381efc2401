package infra

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter builds a writer for topic. Messages are hashed by key so all
// events of one card land on the same partition.
func NewKafkaWriter(brokers []string, topic string) (*kafka.Writer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		WriteBackoffMax:        250 * time.Millisecond,
		AllowAutoTopicCreation: true,
		// Each correction publishes one message synchronously; do not wait
		// for a batch to fill.
		BatchTimeout: 10 * time.Millisecond,
	}, nil
}
