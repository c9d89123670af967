package postgres

import (
	"encoding/json"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"gorm.io/datatypes"
)

func toDomainUser(m userModel) domain.User {
	return domain.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
		Role:  domain.Role(m.Role),
		Scope: domain.Scope{
			StateID:    m.StateID,
			DistrictID: m.DistrictID,
			CityID:     m.CityID,
			WardID:     m.WardID,
		},
		Points: m.Points,
	}
}

func toDomainComplaint(m complaintModel) domain.Complaint {
	var analysis json.RawMessage
	if len(m.AIAnalysis) > 0 {
		analysis = json.RawMessage(m.AIAnalysis)
	}
	return domain.Complaint{
		ID:              m.ID,
		TicketID:        m.TicketID,
		Title:           m.Title,
		Description:     m.Description,
		Category:        m.Category,
		Severity:        m.Severity,
		ConfidenceScore: m.ConfidenceScore,
		IsDuplicate:     m.IsDuplicate,
		SpamScore:       m.SpamScore,
		Status:          domain.ComplaintStatus(m.Status),
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		Scope: domain.Scope{
			StateID:    m.StateID,
			DistrictID: m.DistrictID,
			CityID:     m.CityID,
			WardID:     m.WardID,
		},
		AuthorID:     m.AuthorID,
		AssignedToID: m.AssignedToID,
		DepartmentID: m.DepartmentID,
		AIAnalysis:   analysis,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// mutableColumns lists the columns a verdict or workflow step may change.
// ticket, author and scope stay as created.
func mutableColumns(c domain.Complaint) map[string]any {
	var analysis any
	if len(c.AIAnalysis) > 0 {
		analysis = datatypes.JSON(c.AIAnalysis)
	}
	return map[string]any{
		"category":         c.Category,
		"severity":         domain.ClampSeverity(c.Severity),
		"confidence_score": c.ConfidenceScore,
		"is_duplicate":     c.IsDuplicate,
		"spam_score":       c.SpamScore,
		"status":           string(c.Status),
		"assigned_to_id":   c.AssignedToID,
		"department_id":    c.DepartmentID,
		"ai_analysis":      analysis,
		"updated_at":       c.UpdatedAt,
	}
}

func toDomainNotification(m notificationModel) domain.Notification {
	return domain.Notification{
		ID:          m.ID,
		UserID:      m.UserID,
		Type:        domain.NotificationType(m.Type),
		Title:       m.Title,
		Message:     m.Message,
		Read:        m.Read,
		ComplaintID: m.ComplaintID,
		DedupKey:    m.DedupKey,
		CreatedAt:   m.CreatedAt,
	}
}
