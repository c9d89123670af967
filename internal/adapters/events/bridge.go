package events

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/metrics"
	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/cenkalti/backoff/v4"
)

type BridgeState string

const (
	StateStarting  BridgeState = "STARTING"
	StateConsuming BridgeState = "CONSUMING"
	StateBackoff   BridgeState = "BACKOFF"
	StateStopped   BridgeState = "STOPPED"
)

var allStates = []BridgeState{StateStarting, StateConsuming, StateBackoff, StateStopped}

// EventHandler applies one inbound message. It must be safe to call again
// with the same message.
type EventHandler interface {
	HandleEvent(ctx context.Context, topic string, payload []byte) error
}

type BridgeConfig struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	CommitAttempts int
}

// Bridge is one consumer loop. A message's offset is committed only after
// the handler succeeded or reported the payload as permanently unusable.
type Bridge struct {
	logger         *slog.Logger
	name           string
	consumer       ports.EventConsumer
	handler        EventHandler
	initialBackoff time.Duration
	maxBackoff     time.Duration
	commitAttempts int
	state          atomic.Value
}

func NewBridge(logger *slog.Logger, name string, consumer ports.EventConsumer, handler EventHandler, cfg BridgeConfig) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.CommitAttempts <= 0 {
		cfg.CommitAttempts = 3
	}
	b := &Bridge{
		logger:         logger,
		name:           name,
		consumer:       consumer,
		handler:        handler,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		commitAttempts: cfg.CommitAttempts,
	}
	b.setState(StateStarting)
	return b
}

func (b *Bridge) State() BridgeState {
	return b.state.Load().(BridgeState)
}

// Run consumes until ctx is cancelled and closes the consumer on exit.
func (b *Bridge) Run(ctx context.Context) error {
	b.setState(StateStarting)
	defer func() {
		if err := b.consumer.Close(); err != nil {
			b.logger.WarnContext(ctx, "bridge consumer close failed",
				"module", "events.bridge",
				"layer", "adapter",
				"operation", "close_consumer",
				"outcome", "failure",
				"worker", b.name,
				"error", err,
			)
		}
		b.setState(StateStopped)
	}()

	b.logger.InfoContext(ctx, "bridge worker started",
		"module", "events.bridge",
		"layer", "adapter",
		"operation", "run",
		"outcome", "success",
		"worker", b.name,
	)

	fetchBackoff := b.newBackOff()
	for {
		b.setState(StateConsuming)
		msg, err := b.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.ErrorContext(ctx, "bridge fetch failed",
				"module", "events.bridge",
				"layer", "adapter",
				"operation", "fetch",
				"outcome", "failure",
				"worker", b.name,
				"error", err,
			)
			if !b.pause(ctx, fetchBackoff.NextBackOff()) {
				return nil
			}
			continue
		}
		fetchBackoff.Reset()

		if !b.process(ctx, msg) {
			return nil
		}
	}
}

// process retries msg in place until it is applied or dropped, then commits.
// It reports false once ctx is done. Moving past a failed message would let
// a later commit cover its offset.
func (b *Bridge) process(ctx context.Context, msg ports.InboundMessage) bool {
	started := time.Now()
	retry := b.newBackOff()
	for {
		err := b.handler.HandleEvent(ctx, msg.Topic, msg.Value)
		if err == nil {
			metrics.BridgeEventsTotal.WithLabelValues(msg.Topic, "applied").Inc()
			break
		}
		if unusable(err) {
			metrics.BridgeEventsTotal.WithLabelValues(msg.Topic, "dropped").Inc()
			b.logger.WarnContext(ctx, "bridge dropped unusable message",
				"module", "events.bridge",
				"layer", "adapter",
				"operation", "handle_event",
				"outcome", "dropped",
				"worker", b.name,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"payload_bytes", len(msg.Value),
				"error", err,
			)
			break
		}
		if ctx.Err() != nil {
			return false
		}
		metrics.BridgeEventsTotal.WithLabelValues(msg.Topic, "retry").Inc()
		wait := retry.NextBackOff()
		b.logger.ErrorContext(ctx, "bridge handler failed; retrying message",
			"module", "events.bridge",
			"layer", "adapter",
			"operation", "handle_event",
			"outcome", "failure",
			"worker", b.name,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"retry_in", wait.String(),
			"error", err,
		)
		if !b.pause(ctx, wait) {
			return false
		}
		b.setState(StateConsuming)
	}

	if !b.commit(ctx, msg) {
		return ctx.Err() == nil
	}
	metrics.BridgeEventDuration.WithLabelValues(msg.Topic).Observe(time.Since(started).Seconds())
	return true
}

// unusable reports errors that redelivery cannot fix.
func unusable(err error) bool {
	return errors.Is(err, domain.ErrMalformedEvent) ||
		errors.Is(err, domain.ErrUnsupportedEventType) ||
		errors.Is(err, domain.ErrInvalidInput)
}

// commit acknowledges msg with a few retries. A commit that keeps failing
// is left to redelivery; the handler is idempotent.
func (b *Bridge) commit(ctx context.Context, msg ports.InboundMessage) bool {
	retry := b.newBackOff()
	for attempt := 1; ; attempt++ {
		err := b.consumer.Commit(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		b.logger.WarnContext(ctx, "bridge commit failed",
			"module", "events.bridge",
			"layer", "adapter",
			"operation", "commit",
			"outcome", "failure",
			"worker", b.name,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"attempt", attempt,
			"error", err,
		)
		if attempt >= b.commitAttempts {
			metrics.BridgeEventsTotal.WithLabelValues(msg.Topic, "commit_failed").Inc()
			return false
		}
		if !b.pause(ctx, retry.NextBackOff()) {
			return false
		}
	}
}

func (b *Bridge) pause(ctx context.Context, wait time.Duration) bool {
	if wait == backoff.Stop {
		wait = b.maxBackoff
	}
	b.setState(StateBackoff)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (b *Bridge) newBackOff() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(b.initialBackoff),
		backoff.WithMaxInterval(b.maxBackoff),
		backoff.WithMaxElapsedTime(0),
	)
}

func (b *Bridge) setState(state BridgeState) {
	b.state.Store(state)
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1
		}
		metrics.BridgeWorkerState.WithLabelValues(b.name, string(s)).Set(v)
	}
}
