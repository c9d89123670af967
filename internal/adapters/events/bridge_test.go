package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	mu        sync.Mutex
	pending   []ports.InboundMessage
	committed []int64
	commitErr error
	closed    bool
	drained   chan struct{}
}

func newFakeConsumer(msgs ...ports.InboundMessage) *fakeConsumer {
	return &fakeConsumer{pending: msgs, drained: make(chan struct{})}
}

func (c *fakeConsumer) Fetch(ctx context.Context) (ports.InboundMessage, error) {
	c.mu.Lock()
	if len(c.pending) > 0 {
		msg := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		return msg, nil
	}
	c.mu.Unlock()
	select {
	case <-c.drained:
	default:
		close(c.drained)
	}
	<-ctx.Done()
	return ports.InboundMessage{}, ctx.Err()
}

func (c *fakeConsumer) Commit(_ context.Context, msg ports.InboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commitErr != nil {
		return c.commitErr
	}
	c.committed = append(c.committed, msg.Offset)
	return nil
}

func (c *fakeConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConsumer) Committed() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.committed...)
}

type scriptedHandler struct {
	mu    sync.Mutex
	calls map[int64]int
	// failures maps offset to the number of transient failures before success
	failures map[int64]int
	consumer *fakeConsumer
	// commitsAtCall records how many offsets were committed when each call ran
	commitsAtCall []int
}

func (h *scriptedHandler) HandleEvent(_ context.Context, topic string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var offset int64
	_, _ = fmt.Sscanf(string(payload), "offset-%d", &offset)
	h.calls[offset]++
	if h.consumer != nil {
		h.commitsAtCall = append(h.commitsAtCall, len(h.consumer.Committed()))
	}
	if topic == "bad" {
		return fmt.Errorf("%w: unparseable", domain.ErrMalformedEvent)
	}
	if topic == "orphan" {
		return fmt.Errorf("%w: violates foreign key constraint", domain.ErrInvalidInput)
	}
	if h.calls[offset] <= h.failures[offset] {
		return domain.ErrStorageUnavailable
	}
	return nil
}

func message(topic string, offset int64) ports.InboundMessage {
	return ports.InboundMessage{Topic: topic, Offset: offset, Value: []byte(fmt.Sprintf("offset-%d", offset))}
}

func runBridge(t *testing.T, bridge *Bridge, consumer *fakeConsumer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	select {
	case <-consumer.drained:
	case <-time.After(3 * time.Second):
		t.Fatal("bridge did not drain messages")
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("bridge did not stop")
	}
}

func fastConfig() BridgeConfig {
	return BridgeConfig{InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, CommitAttempts: 2}
}

func TestBridgeCommitsAfterSuccess(t *testing.T) {
	consumer := newFakeConsumer(message(domain.TopicComplaintProcessed, 1), message(domain.TopicComplaintRejected, 2))
	handler := &scriptedHandler{calls: map[int64]int{}, failures: map[int64]int{}}
	bridge := NewBridge(nil, "w0", consumer, handler, fastConfig())
	assert.Equal(t, StateStarting, bridge.State())

	runBridge(t, bridge, consumer)

	assert.Equal(t, []int64{1, 2}, consumer.Committed())
	assert.Equal(t, StateStopped, bridge.State())
	assert.True(t, consumer.closed)
}

func TestBridgeRetriesTransientFailureBeforeCommitting(t *testing.T) {
	consumer := newFakeConsumer(message(domain.TopicComplaintRejected, 7), message(domain.TopicComplaintRejected, 8))
	handler := &scriptedHandler{calls: map[int64]int{}, failures: map[int64]int{7: 3}, consumer: consumer}
	bridge := NewBridge(nil, "w0", consumer, handler, fastConfig())

	runBridge(t, bridge, consumer)

	assert.Equal(t, 4, handler.calls[7])
	assert.Equal(t, 1, handler.calls[8])
	assert.Equal(t, []int64{7, 8}, consumer.Committed())
	// nothing was committed while offset 7 was still failing
	assert.Equal(t, []int{0, 0, 0, 0, 1}, handler.commitsAtCall)
}

func TestBridgeDropsMalformedMessages(t *testing.T) {
	consumer := newFakeConsumer(message("bad", 3), message(domain.TopicComplaintProcessed, 4))
	handler := &scriptedHandler{calls: map[int64]int{}, failures: map[int64]int{}}
	bridge := NewBridge(nil, "w0", consumer, handler, fastConfig())

	runBridge(t, bridge, consumer)

	assert.Equal(t, 1, handler.calls[3])
	assert.Equal(t, []int64{3, 4}, consumer.Committed())
}

func TestBridgeDropsMessagesReferencingMissingRows(t *testing.T) {
	consumer := newFakeConsumer(message("orphan", 11), message(domain.TopicComplaintRejected, 12))
	handler := &scriptedHandler{calls: map[int64]int{}, failures: map[int64]int{}}
	bridge := NewBridge(nil, "w0", consumer, handler, fastConfig())

	runBridge(t, bridge, consumer)

	assert.Equal(t, 1, handler.calls[11])
	assert.Equal(t, 1, handler.calls[12])
	assert.Equal(t, []int64{11, 12}, consumer.Committed())
}

func TestBridgeStopsWhileBackingOff(t *testing.T) {
	consumer := newFakeConsumer(message(domain.TopicComplaintRejected, 9))
	handler := &scriptedHandler{calls: map[int64]int{}, failures: map[int64]int{9: 1 << 30}}
	bridge := NewBridge(nil, "w0", consumer, handler, BridgeConfig{InitialBackoff: 5 * time.Millisecond, MaxBackoff: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	require.Eventually(t, func() bool {
		handler.mu.Lock()
		defer handler.mu.Unlock()
		return handler.calls[9] >= 2
	}, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
	}
	assert.Empty(t, consumer.Committed())
	assert.Equal(t, StateStopped, bridge.State())
}

func TestBridgeCommitFailureDoesNotBlockNextMessage(t *testing.T) {
	consumer := newFakeConsumer(message(domain.TopicComplaintProcessed, 5))
	consumer.commitErr = errors.New("rebalance in progress")
	handler := &scriptedHandler{calls: map[int64]int{}, failures: map[int64]int{}}
	bridge := NewBridge(nil, "w0", consumer, handler, fastConfig())

	runBridge(t, bridge, consumer)

	assert.Equal(t, 1, handler.calls[5])
	assert.Empty(t, consumer.Committed())
}
