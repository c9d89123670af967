package http

import (
	"context"
	"net/http"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/realtime"
	"github.com/abx15/JanSankalp-AI-sub002/internal/application"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/go-chi/chi/v5"
)

const realtimePath = "/v1/realtime"

// Handler is the HTTP adapter entrypoint for complaint and inbox use-cases.
type Handler struct {
	service        *application.Service
	verifier       ports.TokenVerifier
	hub            *realtime.Hub
	ready          func(ctx context.Context) error
	originPatterns []string
}

type HandlerOptions struct {
	Verifier ports.TokenVerifier
	Hub      *realtime.Hub
	// Ready backs /readyz; nil means always ready.
	Ready          func(ctx context.Context) error
	OriginPatterns []string
}

func NewHandler(service *application.Service, opts HandlerOptions) *Handler {
	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(nil)
	}
	return &Handler{
		service:        service,
		verifier:       opts.Verifier,
		hub:            hub,
		ready:          opts.Ready,
		originPatterns: opts.OriginPatterns,
	}
}

// NewRouter registers routes and the middleware stack. metrics may be nil.
func NewRouter(handler *Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Post("/complaints", handler.submitComplaint)
		r.Get("/complaints", handler.listComplaints)
		r.Get("/complaints/{complaint_id}", handler.getComplaint)
		r.Patch("/complaints/{complaint_id}/status", handler.changeStatus)
		r.Post("/complaints/{complaint_id}/assign", handler.assignOfficer)

		r.Get("/notifications", handler.listNotifications)
		r.Post("/notifications/read-all", handler.markAllNotificationsRead)
		r.Post("/notifications/{notification_id}/read", handler.markNotificationRead)

		r.Get("/realtime", handler.streamRealtime)
	})

	return r
}
