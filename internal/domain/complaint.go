package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "PENDING"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	switch s := ComplaintStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return s, nil
	default:
		return "", ErrInvalidInput
	}
}

// IsTerminal reports whether no pipeline step may move the complaint out of s
// without an explicit authorized action.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

const (
	MinSeverity = 1
	MaxSeverity = 5
)

type Complaint struct {
	ID              string
	TicketID        string
	Title           string
	Description     string
	Category        string
	Severity        int
	ConfidenceScore float64
	IsDuplicate     bool
	SpamScore       float64
	Status          ComplaintStatus
	Latitude        float64
	Longitude       float64
	Scope           Scope
	AuthorID        string
	AssignedToID    *string
	DepartmentID    *string
	AIAnalysis      json.RawMessage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ClampSeverity keeps persisted severities inside [MinSeverity, MaxSeverity].
func ClampSeverity(v int) int {
	if v < MinSeverity {
		return MinSeverity
	}
	if v > MaxSeverity {
		return MaxSeverity
	}
	return v
}

type ComplaintFilter struct {
	Status   ComplaintStatus
	Category string
	Page     int
	PageSize int
}
