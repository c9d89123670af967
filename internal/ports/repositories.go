package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/google/uuid"
)

type CreateComplaintParams struct {
	ID          string
	TicketID    string
	Title       string
	Description string
	Category    string
	Severity    int
	Latitude    float64
	Longitude   float64
	Scope       domain.Scope
	AuthorID    string
	CreatedAt   time.Time
}

// ComplaintMutation edits c in place and reports whether anything changed.
// Returning an error aborts the write.
type ComplaintMutation func(c *domain.Complaint) (changed bool, err error)

type ComplaintRepository interface {
	// Create returns domain.ErrConflict when the ticket id is taken.
	Create(ctx context.Context, params CreateComplaintParams) (domain.Complaint, error)
	GetByID(ctx context.Context, id string) (domain.Complaint, error)
	// Mutate reads the complaint under a row lock, applies fn and persists
	// the result in one transaction.
	Mutate(ctx context.Context, id string, fn ComplaintMutation) (domain.Complaint, bool, error)
	List(ctx context.Context, pred domain.TenantPredicate, filter domain.ComplaintFilter) ([]domain.Complaint, int64, error)
	// FindOpenInBox returns non-resolved complaints of category inside box.
	FindOpenInBox(ctx context.Context, category string, box domain.BoundingBox) ([]domain.Complaint, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	AddPoints(ctx context.Context, id string, delta int) error
}

type CreateNotificationParams struct {
	ID          string
	UserID      string
	Type        domain.NotificationType
	Title       string
	Message     string
	ComplaintID *string
	DedupKey    string
	CreatedAt   time.Time
}

type NotificationRepository interface {
	// CreateIfAbsent inserts the notification unless one with the same
	// DedupKey exists; created reports which happened.
	CreateIfAbsent(ctx context.Context, params CreateNotificationParams) (n domain.Notification, created bool, err error)
	ListByUser(ctx context.Context, userID string, filter domain.NotificationFilter) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      json.RawMessage
	OccurredAt   time.Time
}

type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}

// EventDedupRepository stores idempotency markers for inbound events.
type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
	// PurgeExpired deletes markers whose expiry is at or before now and
	// reports how many went.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
