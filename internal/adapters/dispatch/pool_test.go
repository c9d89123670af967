package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestPoolDropsEmailBeforeRealtime(t *testing.T) {
	// no Run: nothing drains the queue
	pool := NewPool(nil, Config{Workers: 1, QueueSize: 4, EmailShare: 0.5})

	assert.True(t, pool.Dispatch(ports.JobEmail, "e1", noop))
	assert.True(t, pool.Dispatch(ports.JobEmail, "e2", noop))
	assert.False(t, pool.Dispatch(ports.JobEmail, "e3", noop))

	assert.True(t, pool.Dispatch(ports.JobRealtime, "r1", noop))
	assert.True(t, pool.Dispatch(ports.JobRealtime, "r2", noop))
	assert.False(t, pool.Dispatch(ports.JobRealtime, "r3", noop))
}

func TestPoolRunsJobsAndDrainsOnShutdown(t *testing.T) {
	pool := NewPool(nil, Config{Workers: 2, QueueSize: 16, DrainTimeout: time.Second})
	var ran atomic.Int32
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		require.True(t, pool.Dispatch(ports.JobRealtime, "job", func(context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	wg.Wait()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
	assert.Equal(t, int32(5), ran.Load())
	assert.False(t, pool.Dispatch(ports.JobRealtime, "late", noop))
}

func TestPoolSurvivesFailingAndPanickingJobs(t *testing.T) {
	pool := NewPool(nil, Config{Workers: 1, QueueSize: 8})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = pool.Run(ctx) }()

	finished := make(chan struct{})
	require.True(t, pool.Dispatch(ports.JobEmail, "fails", func(context.Context) error { return errors.New("boom") }))
	require.True(t, pool.Dispatch(ports.JobEmail, "panics", func(context.Context) error { panic("bad job") }))
	require.True(t, pool.Dispatch(ports.JobRealtime, "after", func(context.Context) error {
		close(finished)
		return nil
	}))

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a failing job")
	}
}
