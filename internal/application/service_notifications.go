package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// NotifyStatusChange records a status notification for the user and fans
// it out to the realtime channel and email. Only the record write can fail
// the call.
func (s *Service) NotifyStatusChange(ctx context.Context, change StatusChange) (domain.Notification, error) {
	if strings.TrimSpace(change.UserID) == "" || change.NewStatus == "" {
		return domain.Notification{}, domain.ErrInvalidInput
	}
	title := domain.StatusUpdateTitle(change.NewStatus)
	message := domain.StatusUpdateMessage(change.TicketID, change.NewStatus)
	email := ports.EmailMessage{
		To:      change.Email,
		Subject: fmt.Sprintf("Update on your Report - %s", change.TicketID),
		HTML:    renderStatusEmail(change.Name, change.TicketID, string(change.NewStatus), change.Title),
	}
	return s.fanout(ctx, change, domain.NotificationTypeForStatus(change.NewStatus), title, message, email)
}

// NotifyAssigned tells the complaint author an officer picked it up.
func (s *Service) NotifyAssigned(ctx context.Context, change StatusChange, officerName string) (domain.Notification, error) {
	if strings.TrimSpace(change.UserID) == "" {
		return domain.Notification{}, domain.ErrInvalidInput
	}
	if officerName == "" {
		officerName = "an officer"
	}
	email := ports.EmailMessage{
		To:      change.Email,
		Subject: fmt.Sprintf("Update on your Report - %s", change.TicketID),
		HTML:    renderStatusEmail(change.Name, change.TicketID, string(domain.StatusInProgress), change.Title),
	}
	return s.fanout(ctx, change, domain.NotificationComplaintAssigned, "Complaint Assigned",
		domain.AssignedMessage(change.TicketID, officerName), email)
}

// NotifyRegistered confirms a fresh submission to its author.
func (s *Service) NotifyRegistered(ctx context.Context, change StatusChange, category string) (domain.Notification, error) {
	if strings.TrimSpace(change.UserID) == "" {
		return domain.Notification{}, domain.ErrInvalidInput
	}
	email := ports.EmailMessage{
		To:      change.Email,
		Subject: fmt.Sprintf("Your Complaint Has Been Registered - %s", change.TicketID),
		HTML:    renderRegisteredEmail(change.Name, change.TicketID, category),
	}
	return s.fanout(ctx, change, domain.NotificationComplaintRegistered, "Complaint Registered",
		domain.RegisteredMessage(change.TicketID), email)
}

func (s *Service) fanout(
	ctx context.Context,
	change StatusChange,
	kind domain.NotificationType,
	title, message string,
	email ports.EmailMessage,
) (domain.Notification, error) {
	dedupKey := change.DedupKey
	if dedupKey == "" {
		dedupKey = uuid.NewString()
	}
	var complaintID *string
	if change.ComplaintID != "" {
		id := change.ComplaintID
		complaintID = &id
	}
	notification, created, err := s.notifications.CreateIfAbsent(ctx, ports.CreateNotificationParams{
		ID:          notificationID(dedupKey),
		UserID:      change.UserID,
		Type:        kind,
		Title:       title,
		Message:     message,
		ComplaintID: complaintID,
		DedupKey:    dedupKey,
		CreatedAt:   s.nowFn(),
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	if !created {
		return notification, nil
	}

	realtimePayload := map[string]any{
		"id":          notification.ID,
		"type":        notification.Type,
		"title":       notification.Title,
		"message":     notification.Message,
		"complaintId": notification.ComplaintID,
		"createdAt":   notification.CreatedAt,
	}
	if kind != domain.NotificationComplaintRegistered && change.NewStatus != "" {
		realtimePayload["status"] = change.NewStatus
	}
	s.publishRealtime(ctx, ports.UserChannel(change.UserID), ports.EventNotification, realtimePayload)

	if strings.TrimSpace(email.To) != "" {
		s.dispatchEmail(ctx, email)
	}
	return notification, nil
}

func (s *Service) dispatchEmail(ctx context.Context, msg ports.EmailMessage) {
	if s.email == nil {
		return
	}
	accepted := s.dispatcher.Dispatch(ports.JobEmail, msg.Subject, func(jobCtx context.Context) error {
		policy := backoff.WithContext(
			backoff.WithMaxRetries(
				backoff.NewExponentialBackOff(backoff.WithInitialInterval(s.cfg.EmailRetryBackoff)),
				uint64(s.cfg.EmailMaxRetries),
			),
			jobCtx,
		)
		attempt := 0
		err := backoff.Retry(func() error {
			attempt++
			sendCtx, cancel := context.WithTimeout(jobCtx, s.cfg.EmailTimeout)
			defer cancel()
			return s.email.Send(sendCtx, msg)
		}, policy)
		if err != nil {
			s.logger.WarnContext(jobCtx, "email dispatch abandoned",
				"module", "application.fanout",
				"layer", "application",
				"operation", "send_email",
				"outcome", "failure",
				"subject", msg.Subject,
				"attempts", attempt,
				"error", err,
			)
		}
		return err
	})
	if !accepted {
		s.logDropped(ctx, ports.JobEmail, msg.Subject)
	}
}

func (s *Service) ListNotifications(ctx context.Context, actor domain.Actor, unreadOnly bool, page, pageSize int) (NotificationList, error) {
	if actor.UserID == "" {
		return NotificationList{}, domain.ErrUnauthorized
	}
	page, pageSize = normalizePage(page, pageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	items, total, err := s.notifications.ListByUser(ctx, actor.UserID, domain.NotificationFilter{
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return NotificationList{}, err
	}
	out := NotificationList{Items: make([]NotificationView, 0, len(items)), Total: total, Page: page, PageSize: pageSize}
	for _, n := range items {
		out.Items = append(out.Items, toNotificationView(n))
	}
	return out, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, actor domain.Actor, notificationID string) error {
	if actor.UserID == "" {
		return domain.ErrUnauthorized
	}
	if strings.TrimSpace(notificationID) == "" {
		return domain.ErrInvalidInput
	}
	return s.notifications.MarkRead(ctx, actor.UserID, notificationID)
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor domain.Actor) (int64, error) {
	if actor.UserID == "" {
		return 0, domain.ErrUnauthorized
	}
	return s.notifications.MarkAllRead(ctx, actor.UserID)
}

