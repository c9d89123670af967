package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/google/uuid"
)

type Repositories struct {
	Complaints    *ComplaintRepo
	Users         *UserRepo
	Notifications *NotificationRepo
	EventDedup    *EventDedupRepo
	Outbox        *OutboxRepo
}

func NewRepositories() *Repositories {
	return &Repositories{
		Complaints:    &ComplaintRepo{rows: map[string]domain.Complaint{}},
		Users:         &UserRepo{rows: map[string]domain.User{}},
		Notifications: &NotificationRepo{rows: map[string]domain.Notification{}, byDedup: map[string]string{}},
		EventDedup:    &EventDedupRepo{rows: map[string]time.Time{}},
		Outbox:        &OutboxRepo{},
	}
}

type ComplaintRepo struct {
	mu   sync.Mutex
	rows map[string]domain.Complaint

	// FailWrites makes Create and Mutate return this error.
	FailWrites error
}

func (r *ComplaintRepo) Put(c domain.Complaint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = c
}

func (r *ComplaintRepo) SetFailWrites(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FailWrites = err
}

func (r *ComplaintRepo) Create(_ context.Context, params ports.CreateComplaintParams) (domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return domain.Complaint{}, r.FailWrites
	}
	for _, row := range r.rows {
		if row.TicketID == params.TicketID {
			return domain.Complaint{}, domain.ErrConflict
		}
	}
	if _, exists := r.rows[params.ID]; exists {
		return domain.Complaint{}, domain.ErrConflict
	}
	row := domain.Complaint{
		ID:          params.ID,
		TicketID:    params.TicketID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Severity:    domain.ClampSeverity(params.Severity),
		Status:      domain.StatusPending,
		Latitude:    params.Latitude,
		Longitude:   params.Longitude,
		Scope:       params.Scope,
		AuthorID:    params.AuthorID,
		CreatedAt:   params.CreatedAt,
		UpdatedAt:   params.CreatedAt,
	}
	r.rows[row.ID] = row
	return row, nil
}

func (r *ComplaintRepo) GetByID(_ context.Context, id string) (domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return domain.Complaint{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *ComplaintRepo) Mutate(_ context.Context, id string, fn ports.ComplaintMutation) (domain.Complaint, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return domain.Complaint{}, false, r.FailWrites
	}
	row, ok := r.rows[id]
	if !ok {
		return domain.Complaint{}, false, domain.ErrNotFound
	}
	working := row
	changed, err := fn(&working)
	if err != nil {
		return domain.Complaint{}, false, err
	}
	if !changed {
		return row, false, nil
	}
	working.ID = row.ID
	working.TicketID = row.TicketID
	working.Scope = row.Scope
	working.AuthorID = row.AuthorID
	working.Severity = domain.ClampSeverity(working.Severity)
	r.rows[id] = working
	return working, true, nil
}

func (r *ComplaintRepo) List(_ context.Context, pred domain.TenantPredicate, filter domain.ComplaintFilter) ([]domain.Complaint, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Complaint, 0)
	for _, row := range r.rows {
		if !pred.Matches(row) {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.Category != "" && row.Category != filter.Category {
			continue
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return paginate(items, filter.Page, filter.PageSize), int64(len(items)), nil
}

func (r *ComplaintRepo) FindOpenInBox(_ context.Context, category string, box domain.BoundingBox) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Complaint, 0)
	for _, row := range r.rows {
		if row.Category != category || row.Status == domain.StatusResolved {
			continue
		}
		if !box.Contains(row.Latitude, row.Longitude) {
			continue
		}
		items = append(items, row)
	}
	return items, nil
}

type UserRepo struct {
	mu   sync.Mutex
	rows map[string]domain.User
}

func (r *UserRepo) Put(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[u.ID] = u
}

func (r *UserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *UserRepo) AddPoints(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.Points += delta
	r.rows[id] = row
	return nil
}

type NotificationRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Notification
	byDedup map[string]string

	// FailCreates makes CreateIfAbsent return this error.
	FailCreates error
}

func (r *NotificationRepo) CreateIfAbsent(_ context.Context, params ports.CreateNotificationParams) (domain.Notification, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreates != nil {
		return domain.Notification{}, false, r.FailCreates
	}
	if id, ok := r.byDedup[params.DedupKey]; ok {
		return r.rows[id], false, nil
	}
	row := domain.Notification{
		ID:          params.ID,
		UserID:      params.UserID,
		Type:        params.Type,
		Title:       params.Title,
		Message:     params.Message,
		ComplaintID: params.ComplaintID,
		DedupKey:    params.DedupKey,
		CreatedAt:   params.CreatedAt,
	}
	r.rows[row.ID] = row
	r.byDedup[row.DedupKey] = row.ID
	return row, true, nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string, filter domain.NotificationFilter) ([]domain.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Notification, 0)
	for _, row := range r.rows {
		if row.UserID != userID || (filter.UnreadOnly && row.Read) {
			continue
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return paginate(items, filter.Page, filter.PageSize), int64(len(items)), nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[notificationID]
	if !ok || row.UserID != userID {
		return domain.ErrNotFound
	}
	row.Read = true
	r.rows[notificationID] = row
	return nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, row := range r.rows {
		if row.UserID != userID || row.Read {
			continue
		}
		row.Read = true
		r.rows[id] = row
		n++
	}
	return n, nil
}

// All returns every stored notification in creation order.
func (r *NotificationRepo) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Notification, 0, len(r.rows))
	for _, row := range r.rows {
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

type EventDedupRepo struct {
	mu   sync.Mutex
	rows map[string]time.Time
}

func (r *EventDedupRepo) IsDuplicate(_ context.Context, eventID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.rows[eventID]
	if !ok {
		return false, nil
	}
	return expiresAt.After(now), nil
}

func (r *EventDedupRepo) MarkProcessed(_ context.Context, eventID, _ string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[eventID] = expiresAt
	return nil
}

func (r *EventDedupRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, expiresAt := range r.rows {
		if !expiresAt.After(now) {
			delete(r.rows, id)
			purged++
		}
	}
	return purged, nil
}

func (r *EventDedupRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type OutboxRepo struct {
	mu   sync.Mutex
	rows []*ports.OutboxRecord
}

func (r *OutboxRepo) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := event.EventID
	if id == uuid.Nil {
		id = uuid.New()
	}
	r.rows = append(r.rows, &ports.OutboxRecord{
		OutboxID:     id,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      append([]byte(nil), event.Payload...),
		CreatedAt:    event.OccurredAt,
	})
	return nil
}

func (r *OutboxRepo) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, rec := range r.rows {
		if len(out) >= limit {
			break
		}
		if rec.PublishedAt != nil || rec.DeadLetteredAt != nil {
			continue
		}
		if rec.ClaimUntil != nil && rec.ClaimUntil.After(now) {
			continue
		}
		token := claimToken
		until := claimUntil
		rec.ClaimToken = &token
		rec.ClaimUntil = &until
		out = append(out, *rec)
	}
	return out, nil
}

func (r *OutboxRepo) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return r.update(outboxID, claimToken, func(rec *ports.OutboxRecord) {
		rec.PublishedAt = &at
	})
}

func (r *OutboxRepo) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.update(outboxID, claimToken, func(rec *ports.OutboxRecord) {
		rec.RetryCount++
		rec.LastError = &errMsg
		rec.LastErrorAt = &at
	})
}

func (r *OutboxRepo) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.update(outboxID, claimToken, func(rec *ports.OutboxRecord) {
		rec.RetryCount++
		rec.LastError = &errMsg
		rec.LastErrorAt = &at
		rec.DeadLetteredAt = &at
	})
}

func (r *OutboxRepo) update(outboxID uuid.UUID, claimToken string, fn func(rec *ports.OutboxRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.rows {
		if rec.OutboxID != outboxID {
			continue
		}
		if rec.ClaimToken == nil || *rec.ClaimToken != claimToken {
			return domain.ErrConflict
		}
		fn(rec)
		rec.ClaimToken = nil
		rec.ClaimUntil = nil
		return nil
	}
	return domain.ErrNotFound
}

// Records returns a snapshot of every outbox row.
func (r *OutboxRepo) Records() []ports.OutboxRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, len(r.rows))
	for _, rec := range r.rows {
		out = append(out, *rec)
	}
	return out
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
