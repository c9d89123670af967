package postgres

import (
	"context"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var row userModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return domain.User{}, translate(err)
	}
	return toDomainUser(row), nil
}

func (r *userRepository) AddPoints(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ ports.UserRepository = (*userRepository)(nil)
