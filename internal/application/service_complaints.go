package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/google/uuid"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	initialCategory      = "General"
)

type complaintSubmittedData struct {
	ComplaintID string  `json:"complaint_id"`
	TicketID    string  `json:"ticketId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DistrictID  *string `json:"districtId,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	AuthorID    string  `json:"author_id"`
}

type complaintResolvedData struct {
	ComplaintID string `json:"complaint_id"`
	TicketID    string `json:"ticketId"`
	Category    string `json:"category"`
	Severity    int    `json:"severity"`
	ResolvedBy  string `json:"resolved_by"`
	Note        string `json:"note,omitempty"`
}

func (s *Service) SubmitComplaint(ctx context.Context, actor domain.Actor, req SubmitComplaintRequest) (ComplaintView, error) {
	if actor.UserID == "" {
		return ComplaintView{}, domain.ErrUnauthorized
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" || len(title) > maxTitleLength || len(description) > maxDescriptionLength {
		return ComplaintView{}, fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return ComplaintView{}, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	if err := s.checkSubmissionRate(ctx, actor.UserID); err != nil {
		return ComplaintView{}, err
	}

	author, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return ComplaintView{}, err
	}
	nearby, err := s.FindNearbyDuplicates(ctx, req.Latitude, req.Longitude, initialCategory)
	if err != nil {
		return ComplaintView{}, err
	}
	severity := domain.ComputeSeverity(0, 0, domain.KeywordWeight(title+" "+description), len(nearby))

	var created domain.Complaint
	for attempt := 0; attempt < s.cfg.TicketAttempts; attempt++ {
		now := s.nowFn()
		created, err = s.complaints.Create(ctx, ports.CreateComplaintParams{
			ID:          uuid.NewString(),
			TicketID:    domain.NewTicketID(now),
			Title:       title,
			Description: description,
			Category:    initialCategory,
			Severity:    severity,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			Scope:       author.Scope,
			AuthorID:    author.ID,
			CreatedAt:   now,
		})
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return ComplaintView{}, err
	}

	if err := s.enqueueOutbox(ctx, domain.TopicComplaintSubmitted, created.ID, complaintSubmittedData{
		ComplaintID: created.ID,
		TicketID:    created.TicketID,
		Title:       created.Title,
		Description: created.Description,
		Latitude:    created.Latitude,
		Longitude:   created.Longitude,
		DistrictID:  created.Scope.DistrictID,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		AuthorID:    created.AuthorID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "complaint_submitted enqueue failed",
			"module", "application.complaints",
			"layer", "application",
			"operation", "submit_complaint",
			"outcome", "degraded",
			"complaint_id", created.ID,
			"error", err,
		)
	}

	if _, err := s.NotifyRegistered(ctx, StatusChange{
		UserID:      author.ID,
		Email:       author.Email,
		Name:        author.Name,
		ComplaintID: created.ID,
		TicketID:    created.TicketID,
		Title:       created.Title,
		DedupKey:    "registered:" + created.ID,
	}, created.Category); err != nil {
		s.logger.ErrorContext(ctx, "registration notification failed",
			"module", "application.complaints",
			"layer", "application",
			"operation", "submit_complaint",
			"outcome", "degraded",
			"complaint_id", created.ID,
			"error", err,
		)
	}
	return toComplaintView(created), nil
}

// checkSubmissionRate allows SubmissionLimit complaints per author per
// window. A cache outage lets the submission through.
func (s *Service) checkSubmissionRate(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	count, err := s.cache.IncrWithTTL(ctx, "complaint-submit-rate:"+userID, s.cfg.SubmissionWindow)
	if err != nil {
		s.logger.WarnContext(ctx, "submission rate check unavailable",
			"module", "application.complaints",
			"layer", "application",
			"operation", "check_submission_rate",
			"outcome", "degraded",
			"user_id", userID,
			"error", err,
		)
		return nil
	}
	if count > int64(s.cfg.SubmissionLimit) {
		return domain.ErrRateLimitExceeded
	}
	return nil
}

func (s *Service) GetComplaint(ctx context.Context, actor domain.Actor, complaintID string) (ComplaintView, error) {
	if actor.UserID == "" {
		return ComplaintView{}, domain.ErrUnauthorized
	}
	c, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return ComplaintView{}, err
	}
	if !domain.CanView(actor, c) && !assignedTo(c, actor.UserID) {
		return ComplaintView{}, domain.ErrForbidden
	}
	return toComplaintView(c), nil
}

func (s *Service) ListComplaints(ctx context.Context, actor domain.Actor, filter domain.ComplaintFilter) (ComplaintList, error) {
	if actor.UserID == "" {
		return ComplaintList{}, domain.ErrUnauthorized
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	out := ComplaintList{Items: []ComplaintView{}, Page: filter.Page, PageSize: filter.PageSize}

	pred := domain.TenantFilter(actor)
	if pred.MatchesNone() {
		s.logger.WarnContext(ctx, "actor has no scope at its tier; empty listing",
			"module", "application.complaints",
			"layer", "application",
			"operation", "list_complaints",
			"outcome", "denied",
			"user_id", actor.UserID,
			"role", actor.Role,
		)
		return out, nil
	}
	items, total, err := s.complaints.List(ctx, pred, filter)
	if err != nil {
		return ComplaintList{}, err
	}
	out.Total = total
	for _, c := range items {
		out.Items = append(out.Items, toComplaintView(c))
	}
	return out, nil
}

// ChangeStatus applies an officer or admin status decision. Moving a
// terminal complaint is a logged no-op unless the actor is ADMIN.
func (s *Service) ChangeStatus(ctx context.Context, actor domain.Actor, complaintID string, req ChangeStatusRequest) (ComplaintView, error) {
	if actor.UserID == "" {
		return ComplaintView{}, domain.ErrUnauthorized
	}
	if !actor.Role.IsStaff() {
		return ComplaintView{}, domain.ErrForbidden
	}
	target, err := domain.ParseComplaintStatus(req.Status)
	if err != nil {
		return ComplaintView{}, err
	}

	var view ComplaintView
	err = s.withComplaintLock(ctx, complaintID, func(ctx context.Context) error {
		current, err := s.complaints.GetByID(ctx, complaintID)
		if err != nil {
			return err
		}
		if !domain.CheckAccess(actor, current.Scope) && !assignedTo(current, actor.UserID) {
			return domain.ErrForbidden
		}

		updated, changed, err := s.complaints.Mutate(ctx, complaintID, func(c *domain.Complaint) (bool, error) {
			if c.Status == target {
				return false, nil
			}
			if c.Status.IsTerminal() && actor.Role != domain.RoleAdmin {
				return false, domain.ErrTerminalStatus
			}
			c.Status = target
			c.UpdatedAt = s.nowFn()
			return true, nil
		})
		if errors.Is(err, domain.ErrTerminalStatus) {
			s.logger.WarnContext(ctx, "terminal complaint status change ignored",
				"module", "application.complaints",
				"layer", "application",
				"operation", "change_status",
				"outcome", "noop",
				"complaint_id", complaintID,
				"current_status", current.Status,
				"target_status", target,
				"user_id", actor.UserID,
			)
			view = toComplaintView(current)
			return nil
		}
		if err != nil {
			return err
		}
		view = toComplaintView(updated)
		if !changed {
			return nil
		}

		if target == domain.StatusResolved {
			s.onResolved(ctx, actor, updated, req.Note)
		}
		s.publishRealtime(ctx, ports.ChannelGovernance, ports.EventComplaintUpdated, map[string]any{
			"id":         updated.ID,
			"ticketId":   updated.TicketID,
			"status":     updated.Status,
			"districtId": updated.Scope.DistrictID,
		})
		return s.notifyAuthor(ctx, updated, fmt.Sprintf("status:%s:%s:%s", updated.ID, target, uuid.NewString()))
	})
	if err != nil {
		return ComplaintView{}, err
	}
	return view, nil
}

func (s *Service) onResolved(ctx context.Context, actor domain.Actor, c domain.Complaint, note string) {
	if err := s.users.AddPoints(ctx, c.AuthorID, s.cfg.ResolutionPoints); err != nil {
		s.logger.WarnContext(ctx, "civic points award failed",
			"module", "application.complaints",
			"layer", "application",
			"operation", "award_points",
			"outcome", "failure",
			"complaint_id", c.ID,
			"user_id", c.AuthorID,
			"error", err,
		)
	}
	if err := s.enqueueOutbox(ctx, domain.TopicComplaintResolved, c.ID, complaintResolvedData{
		ComplaintID: c.ID,
		TicketID:    c.TicketID,
		Category:    c.Category,
		Severity:    c.Severity,
		ResolvedBy:  actor.UserID,
		Note:        strings.TrimSpace(note),
	}); err != nil {
		s.logger.ErrorContext(ctx, "complaint_resolved enqueue failed",
			"module", "application.complaints",
			"layer", "application",
			"operation", "change_status",
			"outcome", "degraded",
			"complaint_id", c.ID,
			"error", err,
		)
	}
}

// AssignOfficer routes a complaint to an officer. Only admin tiers with
// scope over the complaint may assign.
func (s *Service) AssignOfficer(ctx context.Context, actor domain.Actor, complaintID string, req AssignOfficerRequest) (ComplaintView, error) {
	if actor.UserID == "" {
		return ComplaintView{}, domain.ErrUnauthorized
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleStateAdmin, domain.RoleDistrictAdmin, domain.RoleCityAdmin:
	default:
		return ComplaintView{}, domain.ErrForbidden
	}
	officerID := strings.TrimSpace(req.OfficerID)
	if officerID == "" {
		return ComplaintView{}, fmt.Errorf("%w: officer_id is required", domain.ErrInvalidInput)
	}
	officer, err := s.users.GetByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ComplaintView{}, fmt.Errorf("%w: unknown officer", domain.ErrInvalidInput)
		}
		return ComplaintView{}, err
	}
	if officer.Role != domain.RoleOfficer {
		return ComplaintView{}, fmt.Errorf("%w: assignee is not an officer", domain.ErrInvalidInput)
	}

	var view ComplaintView
	err = s.withComplaintLock(ctx, complaintID, func(ctx context.Context) error {
		current, err := s.complaints.GetByID(ctx, complaintID)
		if err != nil {
			return err
		}
		if !domain.CheckAccess(actor, current.Scope) {
			return domain.ErrForbidden
		}
		updated, changed, err := s.complaints.Mutate(ctx, complaintID, func(c *domain.Complaint) (bool, error) {
			if c.Status.IsTerminal() {
				return false, domain.ErrTerminalStatus
			}
			if assignedTo(*c, officer.ID) && c.Status == domain.StatusInProgress {
				return false, nil
			}
			id := officer.ID
			c.AssignedToID = &id
			c.Status = domain.StatusInProgress
			c.UpdatedAt = s.nowFn()
			return true, nil
		})
		if errors.Is(err, domain.ErrTerminalStatus) {
			s.logger.WarnContext(ctx, "terminal complaint assignment ignored",
				"module", "application.complaints",
				"layer", "application",
				"operation", "assign_officer",
				"outcome", "noop",
				"complaint_id", complaintID,
				"current_status", current.Status,
				"user_id", actor.UserID,
			)
			view = toComplaintView(current)
			return nil
		}
		if err != nil {
			return err
		}
		view = toComplaintView(updated)
		if !changed {
			return nil
		}

		s.publishRealtime(ctx, ports.UserChannel(officer.ID), ports.EventComplaintAssigned, map[string]any{
			"id":       updated.ID,
			"ticketId": updated.TicketID,
			"title":    updated.Title,
			"severity": updated.Severity,
		})
		s.publishRealtime(ctx, ports.ChannelGovernance, ports.EventComplaintUpdated, map[string]any{
			"id":           updated.ID,
			"ticketId":     updated.TicketID,
			"status":       updated.Status,
			"assignedToId": updated.AssignedToID,
			"districtId":   updated.Scope.DistrictID,
		})

		change := StatusChange{
			UserID:      updated.AuthorID,
			ComplaintID: updated.ID,
			TicketID:    updated.TicketID,
			NewStatus:   updated.Status,
			Title:       updated.Title,
			DedupKey:    fmt.Sprintf("assigned:%s:%s:%s", updated.ID, officer.ID, uuid.NewString()),
		}
		if author, err := s.users.GetByID(ctx, updated.AuthorID); err == nil {
			change.Email = author.Email
			change.Name = author.Name
		}
		_, err = s.NotifyAssigned(ctx, change, officer.Name)
		return err
	})
	if err != nil {
		return ComplaintView{}, err
	}
	return view, nil
}

func assignedTo(c domain.Complaint, userID string) bool {
	return userID != "" && c.AssignedToID != nil && *c.AssignedToID == userID
}
