package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/metrics"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/google/uuid"
)

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// ClaimTTL is how long a claimed batch stays invisible to other relays.
	ClaimTTL   time.Duration
	MaxRetries int
}

// OutboxWorker relays complaint_submitted and complaint_resolved records to
// the classifier's topics. Records are claimed in batches so several worker
// processes can relay side by side; each one keyed by complaint id keeps its
// per-complaint order on the broker. A record whose publish keeps failing is
// dead-lettered after MaxRetries attempts and never sent.
type OutboxWorker struct {
	logger    *slog.Logger
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	cfg       OutboxConfig
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, cfg OutboxConfig) *OutboxWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &OutboxWorker{logger: logger, outbox: outbox, publisher: publisher, cfg: cfg}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "outbox claim failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "claim_batch",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// processOnce claims one batch and settles every record in it.
func (w *OutboxWorker) processOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnpublished(ctx, w.cfg.BatchSize, claimToken, time.Now().UTC().Add(w.cfg.ClaimTTL))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	outcomes := map[string]int{}
	for _, rec := range records {
		outcome, settleErr := w.relay(ctx, rec, claimToken)
		outcomes[outcome]++
		metrics.OutboxPublishedTotal.WithLabelValues(rec.EventType, outcome).Inc()
		if settleErr != nil {
			// the claim expires and the record is picked up again
			w.logger.WarnContext(ctx, "outbox record not settled",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "settle_record",
				"outcome", "failure",
				"outbox_id", rec.OutboxID,
				"complaint_id", rec.PartitionKey,
				"relay_outcome", outcome,
				"error", settleErr,
			)
		}
	}
	w.logger.InfoContext(ctx, "outbox batch relayed",
		"module", "events.outbox_worker",
		"layer", "adapter",
		"operation", "relay_batch",
		"outcome", "success",
		"batch_size", len(records),
		"published_count", outcomes["published"],
		"failed_count", outcomes["failed"],
		"dead_lettered_count", outcomes["dead_lettered"],
	)
	return nil
}

// relay publishes rec and records the result under the batch claim. It
// returns the outcome label and any error from settling the record.
func (w *OutboxWorker) relay(ctx context.Context, rec ports.OutboxRecord, claimToken string) (string, error) {
	now := time.Now().UTC()
	if rec.RetryCount >= w.cfg.MaxRetries {
		return "dead_lettered", w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, "retry threshold reached before publish", now)
	}

	pubErr := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey)
	if pubErr == nil {
		return "published", w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now)
	}

	attempts := rec.RetryCount + 1
	if attempts >= w.cfg.MaxRetries {
		w.logger.ErrorContext(ctx, "complaint event dead-lettered",
			"module", "events.outbox_worker",
			"layer", "adapter",
			"operation", "publish_event",
			"outcome", "failure",
			"outbox_id", rec.OutboxID,
			"event_type", rec.EventType,
			"complaint_id", rec.PartitionKey,
			"attempts", attempts,
			"error", pubErr,
		)
		return "dead_lettered", w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, pubErr.Error(), now)
	}
	w.logger.WarnContext(ctx, "complaint event publish failed; will retry",
		"module", "events.outbox_worker",
		"layer", "adapter",
		"operation", "publish_event",
		"outcome", "failure",
		"outbox_id", rec.OutboxID,
		"event_type", rec.EventType,
		"complaint_id", rec.PartitionKey,
		"attempts", attempts,
		"error", pubErr,
	)
	return "failed", w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, pubErr.Error(), now)
}
