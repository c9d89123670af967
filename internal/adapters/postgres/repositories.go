package postgres

import (
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Complaints    ports.ComplaintRepository
	Users         ports.UserRepository
	Notifications ports.NotificationRepository
	EventDedup    ports.EventDedupRepository
	Outbox        ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Complaints:    &complaintRepository{db: db},
		Users:         &userRepository{db: db},
		Notifications: &notificationRepository{db: db},
		EventDedup:    &eventDedupRepository{db: db},
		Outbox:        &outboxRepository{db: db},
	}
}
