package http

import (
	"net/http"
	"strings"

	"github.com/abx15/JanSankalp-AI-sub002/internal/application"
	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "NOT_READY", "dependencies unavailable", err)
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dependencies unavailable")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) submitComplaint(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req application.SubmitComplaintRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "submit_complaint", err)
		return
	}
	view, err := h.service.SubmitComplaint(r.Context(), actor, req)
	if err != nil {
		writeMappedError(r.Context(), w, "submit_complaint", err)
		return
	}
	writeSuccess(w, http.StatusCreated, view)
}

func (h *Handler) listComplaints(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	query := r.URL.Query()
	filter := domain.ComplaintFilter{
		Category: strings.TrimSpace(query.Get("category")),
		Page:     parseIntDefault(query.Get("page"), 1),
		PageSize: parseIntDefault(query.Get("page_size"), 0),
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := domain.ParseComplaintStatus(raw)
		if err != nil {
			writeMappedError(r.Context(), w, "list_complaints", err)
			return
		}
		filter.Status = status
	}
	list, err := h.service.ListComplaints(r.Context(), actor, filter)
	if err != nil {
		writeMappedError(r.Context(), w, "list_complaints", err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) getComplaint(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	view, err := h.service.GetComplaint(r.Context(), actor, chi.URLParam(r, "complaint_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_complaint", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req application.ChangeStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "change_status", err)
		return
	}
	view, err := h.service.ChangeStatus(r.Context(), actor, chi.URLParam(r, "complaint_id"), req)
	if err != nil {
		writeMappedError(r.Context(), w, "change_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) assignOfficer(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var req application.AssignOfficerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "assign_officer", err)
		return
	}
	view, err := h.service.AssignOfficer(r.Context(), actor, chi.URLParam(r, "complaint_id"), req)
	if err != nil {
		writeMappedError(r.Context(), w, "assign_officer", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	query := r.URL.Query()
	list, err := h.service.ListNotifications(r.Context(), actor,
		parseBool(query.Get("unread")),
		parseIntDefault(query.Get("page"), 1),
		parseIntDefault(query.Get("page_size"), 0),
	)
	if err != nil {
		writeMappedError(r.Context(), w, "list_notifications", err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	if err := h.service.MarkNotificationRead(r.Context(), actor, chi.URLParam(r, "notification_id")); err != nil {
		writeMappedError(r.Context(), w, "mark_notification_read", err)
		return
	}
	writeMessage(w, http.StatusOK, "notification marked as read")
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	updated, err := h.service.MarkAllNotificationsRead(r.Context(), actor)
	if err != nil {
		writeMappedError(r.Context(), w, "mark_all_notifications_read", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"updated": updated})
}
