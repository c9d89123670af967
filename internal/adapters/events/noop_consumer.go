package events

import (
	"context"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

// NoopConsumer never yields a message. Used when no broker is configured.
type NoopConsumer struct{}

func NewNoopConsumer() *NoopConsumer {
	return &NoopConsumer{}
}

func (n *NoopConsumer) Fetch(ctx context.Context) (ports.InboundMessage, error) {
	<-ctx.Done()
	return ports.InboundMessage{}, ctx.Err()
}

func (n *NoopConsumer) Commit(context.Context, ports.InboundMessage) error {
	return nil
}

func (n *NoopConsumer) Close() error {
	return nil
}
