package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type userModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name"`
	Email      string    `gorm:"column:email"`
	Role       string    `gorm:"column:role"`
	StateID    *string   `gorm:"column:state_id"`
	DistrictID *string   `gorm:"column:district_id"`
	CityID     *string   `gorm:"column:city_id"`
	WardID     *string   `gorm:"column:ward_id"`
	Points     int       `gorm:"column:points"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type complaintModel struct {
	ID              string         `gorm:"column:id;primaryKey"`
	TicketID        string         `gorm:"column:ticket_id"`
	Title           string         `gorm:"column:title"`
	Description     string         `gorm:"column:description"`
	Category        string         `gorm:"column:category"`
	Severity        int            `gorm:"column:severity"`
	ConfidenceScore float64        `gorm:"column:confidence_score"`
	IsDuplicate     bool           `gorm:"column:is_duplicate"`
	SpamScore       float64        `gorm:"column:spam_score"`
	Status          string         `gorm:"column:status"`
	Latitude        float64        `gorm:"column:latitude"`
	Longitude       float64        `gorm:"column:longitude"`
	StateID         *string        `gorm:"column:state_id"`
	DistrictID      *string        `gorm:"column:district_id"`
	CityID          *string        `gorm:"column:city_id"`
	WardID          *string        `gorm:"column:ward_id"`
	AuthorID        string         `gorm:"column:author_id"`
	AssignedToID    *string        `gorm:"column:assigned_to_id"`
	DepartmentID    *string        `gorm:"column:department_id"`
	AIAnalysis      datatypes.JSON `gorm:"column:ai_analysis"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (complaintModel) TableName() string { return "complaints" }

type notificationModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id"`
	Type        string    `gorm:"column:type"`
	Title       string    `gorm:"column:title"`
	Message     string    `gorm:"column:message"`
	Read        bool      `gorm:"column:read"`
	ComplaintID *string   `gorm:"column:complaint_id"`
	DedupKey    string    `gorm:"column:dedup_key"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (notificationModel) TableName() string { return "notifications" }

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (eventDedupModel) TableName() string { return "complaint_event_dedup" }

type outboxModel struct {
	OutboxID       uuid.UUID      `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string         `gorm:"column:event_type"`
	PartitionKey   string         `gorm:"column:partition_key"`
	Payload        datatypes.JSON `gorm:"column:payload"`
	RetryCount     int            `gorm:"column:retry_count"`
	LastError      *string        `gorm:"column:last_error"`
	LastErrorAt    *time.Time     `gorm:"column:last_error_at"`
	ClaimToken     *string        `gorm:"column:claim_token"`
	ClaimUntil     *time.Time     `gorm:"column:claim_until"`
	PublishedAt    *time.Time     `gorm:"column:published_at"`
	DeadLetteredAt *time.Time     `gorm:"column:dead_lettered_at"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "complaint_outbox" }
