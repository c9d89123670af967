package ports

import "context"

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// InboundMessage is one broker record handed to the bridge.
type InboundMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int
	Offset    int64
}

// EventConsumer delivers messages at least once. A message is redelivered
// unless Commit is called for it.
type EventConsumer interface {
	Fetch(ctx context.Context) (InboundMessage, error)
	Commit(ctx context.Context, msg InboundMessage) error
	Close() error
}
