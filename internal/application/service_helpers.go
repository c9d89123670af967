package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/google/uuid"
)

func complaintLockKey(complaintID string) string {
	return "complaint-lock:" + complaintID
}

// withComplaintLock runs fn while holding the per-complaint lock so two
// workers never update the same complaint at once.
func (s *Service) withComplaintLock(ctx context.Context, complaintID string, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	acquireCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWait)
	release, err := s.locker.Acquire(acquireCtx, complaintLockKey(complaintID), s.cfg.LockTTL)
	cancel()
	if err != nil {
		return fmt.Errorf("lock complaint %s: %w", complaintID, err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			s.logger.WarnContext(ctx, "complaint lock release failed",
				"module", "application.locking",
				"layer", "application",
				"operation", "release_lock",
				"outcome", "failure",
				"complaint_id", complaintID,
				"error", err,
			)
		}
	}()
	return fn(ctx)
}

// publishRealtime hands a realtime event to the background pool. Failures
// are logged and swallowed.
func (s *Service) publishRealtime(ctx context.Context, channel, event string, payload any) {
	if s.realtime == nil {
		return
	}
	name := channel + "/" + event
	accepted := s.dispatcher.Dispatch(ports.JobRealtime, name, func(jobCtx context.Context) error {
		publishCtx, cancel := context.WithTimeout(jobCtx, s.cfg.PublishTimeout)
		defer cancel()
		if err := s.realtime.Publish(publishCtx, channel, event, payload); err != nil {
			s.logger.WarnContext(jobCtx, "realtime publish failed",
				"module", "application.fanout",
				"layer", "application",
				"operation", "publish_realtime",
				"outcome", "failure",
				"channel", channel,
				"event", event,
				"error", err,
			)
			return err
		}
		return nil
	})
	if !accepted {
		s.logDropped(ctx, ports.JobRealtime, name)
	}
}

func (s *Service) logDropped(ctx context.Context, kind ports.JobKind, name string) {
	s.logger.WarnContext(ctx, "background job dropped; queue full",
		"module", "application.fanout",
		"layer", "application",
		"operation", "dispatch_"+string(kind),
		"outcome", "dropped",
		"job", name,
	)
}

type outboxEnvelope struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	SourceService string `json:"source_service"`
	SchemaVersion string `json:"schema_version"`
	PartitionKey  string `json:"partition_key"`
	Data          any    `json:"data"`
}

// enqueueOutbox records an event for the relay, keyed by complaint id so
// the classifier sees one complaint's events in order.
func (s *Service) enqueueOutbox(ctx context.Context, eventType, complaintID string, data any) error {
	if s.outbox == nil {
		return nil
	}
	occurredAt := s.nowFn()
	eventID := uuid.New()
	payload, err := json.Marshal(outboxEnvelope{
		EventID:       eventID.String(),
		EventType:     eventType,
		OccurredAt:    occurredAt.Format(time.RFC3339),
		SourceService: s.cfg.ServiceName,
		SchemaVersion: "1.0",
		PartitionKey:  complaintID,
		Data:          data,
	})
	if err != nil {
		return err
	}
	return s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      eventID,
		EventType:    eventType,
		PartitionKey: complaintID,
		Payload:      payload,
		OccurredAt:   occurredAt,
	})
}

// notificationID derives a stable id from the event key so retries collide.
func notificationID(dedupKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("jansankalp:notification:"+dedupKey)).String()
}

func normalizePage(page, pageSize, def, maxSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = def
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// inlineDispatcher runs jobs on the caller's goroutine. Used when no pool
// is wired.
type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(_ ports.JobKind, _ string, fn func(ctx context.Context) error) bool {
	_ = fn(context.Background())
	return true
}
