package application

import (
	"encoding/json"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
)

type Config struct {
	ServiceName           string
	EventDedupTTL         time.Duration
	LockTTL               time.Duration
	LockWait              time.Duration
	SubmissionLimit       int
	SubmissionWindow      time.Duration
	ResolutionPoints      int
	TicketAttempts        int
	DuplicateRadiusMeters float64
	PublishTimeout        time.Duration
	EmailTimeout          time.Duration
	EmailMaxRetries       int
	EmailRetryBackoff     time.Duration
	DefaultPageSize       int
	MaxPageSize           int
}

type SubmitComplaintRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type AssignOfficerRequest struct {
	OfficerID string `json:"officer_id"`
}

type ComplaintView struct {
	ID              string          `json:"id"`
	TicketID        string          `json:"ticket_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Severity        int             `json:"severity"`
	ConfidenceScore float64         `json:"confidence_score"`
	IsDuplicate     bool            `json:"is_duplicate"`
	SpamScore       float64         `json:"spam_score"`
	Status          string          `json:"status"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	StateID         *string         `json:"state_id,omitempty"`
	DistrictID      *string         `json:"district_id,omitempty"`
	CityID          *string         `json:"city_id,omitempty"`
	WardID          *string         `json:"ward_id,omitempty"`
	AuthorID        string          `json:"author_id"`
	AssignedToID    *string         `json:"assigned_to_id,omitempty"`
	DepartmentID    *string         `json:"department_id,omitempty"`
	AIAnalysis      json.RawMessage `json:"ai_analysis,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ComplaintList struct {
	Items    []ComplaintView `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type NotificationView struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	ComplaintID *string   `json:"complaint_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationList struct {
	Items    []NotificationView `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// StatusChange is one request to tell a user about a complaint.
type StatusChange struct {
	UserID      string
	Email       string
	Name        string
	ComplaintID string
	TicketID    string
	NewStatus   domain.ComplaintStatus
	Title       string
	// DedupKey names the logical event; the same key never yields a
	// second notification.
	DedupKey string
}

func toComplaintView(c domain.Complaint) ComplaintView {
	return ComplaintView{
		ID:              c.ID,
		TicketID:        c.TicketID,
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		Severity:        c.Severity,
		ConfidenceScore: c.ConfidenceScore,
		IsDuplicate:     c.IsDuplicate,
		SpamScore:       c.SpamScore,
		Status:          string(c.Status),
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		StateID:         c.Scope.StateID,
		DistrictID:      c.Scope.DistrictID,
		CityID:          c.Scope.CityID,
		WardID:          c.Scope.WardID,
		AuthorID:        c.AuthorID,
		AssignedToID:    c.AssignedToID,
		DepartmentID:    c.DepartmentID,
		AIAnalysis:      c.AIAnalysis,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toNotificationView(n domain.Notification) NotificationView {
	return NotificationView{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		ComplaintID: n.ComplaintID,
		CreatedAt:   n.CreatedAt,
	}
}
