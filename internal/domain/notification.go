package domain

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationComplaintRegistered NotificationType = "COMPLAINT_REGISTERED"
	NotificationStatusUpdate        NotificationType = "STATUS_UPDATE"
	NotificationResolved            NotificationType = "RESOLVED"
	NotificationComplaintAssigned   NotificationType = "COMPLAINT_ASSIGNED"
)

type Notification struct {
	ID          string
	UserID      string
	Type        NotificationType
	Title       string
	Message     string
	Read        bool
	ComplaintID *string
	DedupKey    string
	CreatedAt   time.Time
}

type NotificationFilter struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

// NotificationTypeForStatus maps a workflow status to the notification type
// a citizen receives for it.
func NotificationTypeForStatus(status ComplaintStatus) NotificationType {
	if status == StatusResolved {
		return NotificationResolved
	}
	return NotificationStatusUpdate
}

func StatusUpdateTitle(status ComplaintStatus) string {
	return fmt.Sprintf("Status Updated: %s", status)
}

func StatusUpdateMessage(ticketID string, status ComplaintStatus) string {
	return fmt.Sprintf("Your complaint %s status has been updated to %s.", ticketID, status)
}

func RegisteredMessage(ticketID string) string {
	return fmt.Sprintf("Your complaint %s has been successfully registered.", ticketID)
}

func AssignedMessage(ticketID, officerName string) string {
	return fmt.Sprintf("Your complaint %s has been assigned to %s.", ticketID, officerName)
}
