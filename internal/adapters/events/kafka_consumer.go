package events

import (
	"context"
	"fmt"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/segmentio/kafka-go"
)

type KafkaConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	ClientID string
}

// KafkaConsumer reads one consumer-group member's share of the bridge
// topics. Offsets only move on Commit.
type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(cfg KafkaConsumerConfig) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one broker")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer requires group id")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one topic")
	}
	dialer := &kafka.Dialer{
		ClientID:  cfg.ClientID,
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		Dialer:      dialer,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
		// zero interval commits synchronously inside CommitMessages
		CommitInterval: 0,
	})
	return &KafkaConsumer{reader: reader}, nil
}

func (c *KafkaConsumer) Fetch(ctx context.Context) (ports.InboundMessage, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return ports.InboundMessage{}, err
	}
	return ports.InboundMessage{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}, nil
}

func (c *KafkaConsumer) Commit(ctx context.Context, msg ports.InboundMessage) error {
	return c.reader.CommitMessages(ctx, kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
