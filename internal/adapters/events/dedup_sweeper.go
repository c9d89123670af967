package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/metrics"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

// DedupSweeper deletes processed-event markers once their TTL has passed.
// Expired markers no longer suppress anything, so removing them only bounds
// table growth.
type DedupSweeper struct {
	logger   *slog.Logger
	markers  ports.EventDedupRepository
	interval time.Duration
	nowFn    func() time.Time
}

func NewDedupSweeper(logger *slog.Logger, markers ports.EventDedupRepository, interval time.Duration) *DedupSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &DedupSweeper{
		logger:   logger,
		markers:  markers,
		interval: interval,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *DedupSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweepOnce(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *DedupSweeper) sweepOnce(ctx context.Context) int64 {
	purged, err := s.markers.PurgeExpired(ctx, s.nowFn())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "event marker sweep failed",
				"module", "events.dedup_sweeper",
				"layer", "adapter",
				"operation", "purge_expired",
				"outcome", "failure",
				"error", err,
			)
		}
		return 0
	}
	if purged > 0 {
		metrics.EventDedupPurgedTotal.Add(float64(purged))
		s.logger.InfoContext(ctx, "expired event markers purged",
			"module", "events.dedup_sweeper",
			"layer", "adapter",
			"operation", "purge_expired",
			"outcome", "success",
			"purged_count", purged,
		)
	}
	return purged
}
