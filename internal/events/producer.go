package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// MessageEvent is published to Kafka after a message is persisted, for
// downstream consumers (notification workers, search indexing). The
// realtime fan-out does not depend on it.
type MessageEvent struct {
	MessageID   string    `json:"messageId"`
	ChatID      string    `json:"chatId"`
	SenderID    string    `json:"senderId"`
	MessageType string    `json:"messageType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Producer publishes message lifecycle events to a single topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer builds a sync producer with full acks and hash
// partitioning by chat id, so events for one chat stay ordered.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "chatterbox"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// PublishMessageEvent sends the event keyed by chat id.
func (p *Producer) PublishMessageEvent(ev MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal message event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.ChatID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message event: %w", err)
	}
	return nil
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	return p.producer.Close()
}
