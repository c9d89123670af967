package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/memory"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ []byte, partitionKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, eventType+"/"+partitionKey)
	return nil
}

func TestOutboxWorkerPublishesWithPartitionKey(t *testing.T) {
	repo := memory.NewRepositories().Outbox
	ctx := context.Background()
	require.NoError(t, repo.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "complaint_submitted", PartitionKey: "cmp-1", Payload: []byte(`{}`), OccurredAt: time.Now()}))
	require.NoError(t, repo.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "complaint_resolved", PartitionKey: "cmp-2", Payload: []byte(`{}`), OccurredAt: time.Now()}))

	publisher := &recordingPublisher{}
	worker := NewOutboxWorker(nil, repo, publisher, OutboxConfig{PollInterval: time.Second, BatchSize: 10, ClaimTTL: time.Minute, MaxRetries: 3})
	require.NoError(t, worker.processOnce(ctx))

	assert.Equal(t, []string{"complaint_submitted/cmp-1", "complaint_resolved/cmp-2"}, publisher.keys)
	for _, rec := range repo.Records() {
		assert.NotNil(t, rec.PublishedAt)
	}

	// published rows are not claimed again
	require.NoError(t, worker.processOnce(ctx))
	assert.Len(t, publisher.keys, 2)
}

func TestOutboxWorkerDeadLettersAfterMaxRetries(t *testing.T) {
	repo := memory.NewRepositories().Outbox
	ctx := context.Background()
	require.NoError(t, repo.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "complaint_submitted", PartitionKey: "cmp-1", Payload: []byte(`{}`), OccurredAt: time.Now()}))

	publisher := &recordingPublisher{err: errors.New("broker unavailable")}
	worker := NewOutboxWorker(nil, repo, publisher, OutboxConfig{PollInterval: time.Second, BatchSize: 10, ClaimTTL: time.Minute, MaxRetries: 2})

	require.NoError(t, worker.processOnce(ctx))
	rec := repo.Records()[0]
	assert.Equal(t, 1, rec.RetryCount)
	assert.Nil(t, rec.DeadLetteredAt)

	require.NoError(t, worker.processOnce(ctx))
	rec = repo.Records()[0]
	assert.Equal(t, 2, rec.RetryCount)
	assert.NotNil(t, rec.DeadLetteredAt)
}

func TestOutboxWorkerWithoutBrokerSettlesRecords(t *testing.T) {
	repo := memory.NewRepositories().Outbox
	ctx := context.Background()
	payload := []byte(`{"event_id":"e-1","schema_version":"1.0","data":{"ticketId":"JSK-2026-10001"}}`)
	require.NoError(t, repo.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "complaint_submitted", PartitionKey: "cmp-1", Payload: payload, OccurredAt: time.Now()}))
	require.NoError(t, repo.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "complaint_resolved", PartitionKey: "cmp-2", Payload: []byte(`not json`), OccurredAt: time.Now()}))

	worker := NewOutboxWorker(nil, repo, NewLoggingPublisher(nil), OutboxConfig{})
	require.NoError(t, worker.processOnce(ctx))

	for _, rec := range repo.Records() {
		assert.NotNil(t, rec.PublishedAt)
		assert.Zero(t, rec.RetryCount)
	}
}
