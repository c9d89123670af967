package postgres

import (
	"context"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type notificationRepository struct {
	db *gorm.DB
}

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, params ports.CreateNotificationParams) (domain.Notification, bool, error) {
	row := notificationModel{
		ID:          params.ID,
		UserID:      params.UserID,
		Type:        string(params.Type),
		Title:       params.Title,
		Message:     params.Message,
		ComplaintID: params.ComplaintID,
		DedupKey:    params.DedupKey,
		CreatedAt:   params.CreatedAt,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return domain.Notification{}, false, translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return toDomainNotification(row), true, nil
	}

	var existing notificationModel
	if err := r.db.WithContext(ctx).Where("dedup_key = ?", params.DedupKey).Take(&existing).Error; err != nil {
		return domain.Notification{}, false, translate(err)
	}
	return toDomainNotification(existing), false, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, filter domain.NotificationFilter) ([]domain.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&notificationModel{}).Where("user_id = ?", userID)
	if filter.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	page := query.Order("created_at DESC").Order("id ASC")
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		page = page.Limit(filter.PageSize).Offset(offset)
	}
	var rows []notificationModel
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, translate(err)
	}
	items := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainNotification(row))
	}
	return items, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	res := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

var _ ports.NotificationRepository = (*notificationRepository)(nil)
