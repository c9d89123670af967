package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

// HandleEvent applies one inbound broker message. Errors wrapping
// domain.ErrMalformedEvent, domain.ErrUnsupportedEventType or
// domain.ErrInvalidInput can never succeed on redelivery; every other error
// is transient.
func (s *Service) HandleEvent(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case domain.TopicComplaintProcessed:
		return s.HandleComplaintProcessed(ctx, payload)
	case domain.TopicComplaintRejected:
		return s.HandleComplaintRejected(ctx, payload)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventType, topic)
	}
}

func (s *Service) HandleComplaintProcessed(ctx context.Context, payload []byte) error {
	evt, err := domain.ParseComplaintProcessed(payload)
	if err != nil {
		return err
	}
	marker := domain.MarkerKey(domain.TopicComplaintProcessed, evt.ComplaintID, evt.TargetStatus())

	return s.withComplaintLock(ctx, evt.ComplaintID, func(ctx context.Context) error {
		if done, err := s.alreadyApplied(ctx, marker); err != nil || done {
			return err
		}
		current, err := s.complaints.GetByID(ctx, evt.ComplaintID)
		if err != nil {
			return s.verdictLookupFailed(ctx, domain.TopicComplaintProcessed, evt.ComplaintID, err)
		}
		evt, err := s.resolveOfficer(ctx, evt)
		if err != nil {
			return err
		}
		density, err := s.duplicateDensity(ctx, current, evt.Analysis.Category)
		if err != nil {
			return err
		}

		updated, _, err := s.complaints.Mutate(ctx, evt.ComplaintID, func(c *domain.Complaint) (bool, error) {
			if c.Status.IsTerminal() {
				return false, domain.ErrTerminalStatus
			}
			return applyClassification(c, evt, verdictSeverity(*c, evt.Analysis, density), s.nowFn()), nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrTerminalStatus) {
				s.logTerminalNoop(ctx, domain.TopicComplaintProcessed, evt.ComplaintID, current.Status, evt.TargetStatus())
				return s.markApplied(ctx, marker, domain.TopicComplaintProcessed)
			}
			return s.verdictLookupFailed(ctx, domain.TopicComplaintProcessed, evt.ComplaintID, err)
		}

		if err := s.notifyAuthor(ctx, updated, marker); err != nil {
			return err
		}
		if err := s.markApplied(ctx, marker, domain.TopicComplaintProcessed); err != nil {
			return err
		}
		s.publishRealtime(ctx, ports.ChannelGovernance, ports.EventComplaintStatusUpdated, map[string]any{
			"id":           updated.ID,
			"ticketId":     updated.TicketID,
			"status":       updated.Status,
			"category":     updated.Category,
			"severity":     updated.Severity,
			"assignedToId": updated.AssignedToID,
			"districtId":   updated.Scope.DistrictID,
		})
		return nil
	})
}

func (s *Service) HandleComplaintRejected(ctx context.Context, payload []byte) error {
	evt, err := domain.ParseComplaintRejected(payload)
	if err != nil {
		return err
	}
	marker := domain.MarkerKey(domain.TopicComplaintRejected, evt.ComplaintID, evt.TargetStatus())

	return s.withComplaintLock(ctx, evt.ComplaintID, func(ctx context.Context) error {
		if done, err := s.alreadyApplied(ctx, marker); err != nil || done {
			return err
		}
		var previous domain.ComplaintStatus
		updated, _, err := s.complaints.Mutate(ctx, evt.ComplaintID, func(c *domain.Complaint) (bool, error) {
			previous = c.Status
			if c.Status == domain.StatusResolved {
				return false, domain.ErrTerminalStatus
			}
			changed := c.Status != domain.StatusRejected || c.SpamScore != evt.Score
			c.Status = domain.StatusRejected
			c.SpamScore = evt.Score
			if changed {
				c.UpdatedAt = s.nowFn()
			}
			return changed, nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrTerminalStatus) {
				s.logTerminalNoop(ctx, domain.TopicComplaintRejected, evt.ComplaintID, previous, evt.TargetStatus())
				return s.markApplied(ctx, marker, domain.TopicComplaintRejected)
			}
			return s.verdictLookupFailed(ctx, domain.TopicComplaintRejected, evt.ComplaintID, err)
		}

		if err := s.notifyAuthor(ctx, updated, marker); err != nil {
			return err
		}
		if err := s.markApplied(ctx, marker, domain.TopicComplaintRejected); err != nil {
			return err
		}
		s.publishRealtime(ctx, ports.ChannelGovernance, ports.EventComplaintRejected, map[string]any{
			"id":     updated.ID,
			"reason": evt.Reason,
		})
		return nil
	})
}

// resolveOfficer clears an assignment naming a user who is missing or not an
// officer. The rest of the verdict still applies and keeps its marker.
func (s *Service) resolveOfficer(ctx context.Context, evt domain.ComplaintProcessedEvent) (domain.ComplaintProcessedEvent, error) {
	if !evt.HasOfficer() {
		return evt, nil
	}
	officer, err := s.users.GetByID(ctx, *evt.AssignedOfficer)
	switch {
	case err == nil && officer.Role == domain.RoleOfficer:
		return evt, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return evt, err
	}
	s.logger.WarnContext(ctx, "verdict names an unknown officer; assignment skipped",
		"module", "application.events",
		"layer", "application",
		"operation", domain.TopicComplaintProcessed,
		"outcome", "degraded",
		"complaint_id", evt.ComplaintID,
		"officer_id", *evt.AssignedOfficer,
	)
	evt.AssignedOfficer = nil
	return evt, nil
}

func applyClassification(c *domain.Complaint, evt domain.ComplaintProcessedEvent, severity int, now time.Time) bool {
	before := *c
	c.Category = evt.Analysis.Category
	c.Severity = severity
	c.ConfidenceScore = evt.Analysis.Confidence
	c.IsDuplicate = evt.IsDuplicate
	c.AIAnalysis = evt.RawAnalysis
	if evt.HasOfficer() {
		officer := *evt.AssignedOfficer
		c.AssignedToID = &officer
		c.Status = domain.StatusInProgress
	}
	changed := before.Category != c.Category ||
		before.Severity != c.Severity ||
		before.ConfidenceScore != c.ConfidenceScore ||
		before.IsDuplicate != c.IsDuplicate ||
		before.Status != c.Status ||
		!sameString(before.AssignedToID, c.AssignedToID) ||
		string(before.AIAnalysis) != string(c.AIAnalysis)
	if changed {
		c.UpdatedAt = now
	}
	return changed
}

// notifyAuthor fans the complaint's current status out to its author under
// the given event key.
func (s *Service) notifyAuthor(ctx context.Context, c domain.Complaint, dedupKey string) error {
	change := StatusChange{
		UserID:      c.AuthorID,
		ComplaintID: c.ID,
		TicketID:    c.TicketID,
		NewStatus:   c.Status,
		Title:       c.Title,
		DedupKey:    dedupKey,
	}
	author, err := s.users.GetByID(ctx, c.AuthorID)
	switch {
	case err == nil:
		change.Email = author.Email
		change.Name = author.Name
	case errors.Is(err, domain.ErrNotFound):
		s.logger.WarnContext(ctx, "complaint author not found; email skipped",
			"module", "application.events",
			"layer", "application",
			"operation", "notify_author",
			"outcome", "degraded",
			"complaint_id", c.ID,
			"user_id", c.AuthorID,
		)
	default:
		return err
	}
	_, err = s.NotifyStatusChange(ctx, change)
	return err
}

func (s *Service) alreadyApplied(ctx context.Context, marker string) (bool, error) {
	dup, err := s.eventDedup.IsDuplicate(ctx, marker, s.nowFn())
	if err != nil {
		return false, err
	}
	if dup {
		s.logger.InfoContext(ctx, "event already applied; skipping",
			"module", "application.events",
			"layer", "application",
			"operation", "check_marker",
			"outcome", "duplicate",
			"marker", marker,
		)
	}
	return dup, nil
}

func (s *Service) markApplied(ctx context.Context, marker, topic string) error {
	return s.eventDedup.MarkProcessed(ctx, marker, topic, s.nowFn().Add(s.cfg.EventDedupTTL))
}

// verdictLookupFailed drops verdicts for complaints that do not exist and
// passes every other error through for redelivery.
func (s *Service) verdictLookupFailed(ctx context.Context, topic, complaintID string, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.logger.WarnContext(ctx, "verdict for unknown complaint dropped",
		"module", "application.events",
		"layer", "application",
		"operation", topic,
		"outcome", "dropped",
		"complaint_id", complaintID,
	)
	return nil
}

func (s *Service) logTerminalNoop(ctx context.Context, topic, complaintID string, current domain.ComplaintStatus, target string) {
	s.logger.WarnContext(ctx, "complaint already terminal; verdict ignored",
		"module", "application.events",
		"layer", "application",
		"operation", topic,
		"outcome", "noop",
		"complaint_id", complaintID,
		"current_status", current,
		"target_status", target,
	)
}
