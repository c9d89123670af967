package postgres

import (
	"context"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"gorm.io/gorm"
)

type eventDedupRepository struct {
	db *gorm.DB
}

func (r *eventDedupRepository) IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&eventDedupModel{}).
		Where("event_id = ? AND expires_at > ?", eventID, now).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *eventDedupRepository) MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error {
	rec := eventDedupModel{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now().UTC(),
		ExpiresAt:   expiresAt,
	}
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Assign(map[string]any{
			"event_type":   eventType,
			"processed_at": rec.ProcessedAt,
			"expires_at":   expiresAt,
		}).
		FirstOrCreate(&rec).Error
	return translate(err)
}

// PurgeExpired deletes markers past their expiry.
func (r *eventDedupRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&eventDedupModel{})
	return res.RowsAffected, translate(res.Error)
}

var _ ports.EventDedupRepository = (*eventDedupRepository)(nil)
