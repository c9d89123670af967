package application

import (
	"log/slog"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

type Service struct {
	cfg           Config
	logger        *slog.Logger
	complaints    ports.ComplaintRepository
	users         ports.UserRepository
	notifications ports.NotificationRepository
	outbox        ports.OutboxRepository
	eventDedup    ports.EventDedupRepository
	cache         ports.Cache
	locker        ports.Locker
	realtime      ports.RealtimePublisher
	email         ports.EmailSender
	dispatcher    ports.Dispatcher
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Logger        *slog.Logger
	Complaints    ports.ComplaintRepository
	Users         ports.UserRepository
	Notifications ports.NotificationRepository
	Outbox        ports.OutboxRepository
	EventDedup    ports.EventDedupRepository
	Cache         ports.Cache
	Locker        ports.Locker
	Realtime      ports.RealtimePublisher
	Email         ports.EmailSender
	Dispatcher    ports.Dispatcher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "jansankalp-pipeline"
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 5 * time.Second
	}
	if cfg.SubmissionLimit <= 0 {
		cfg.SubmissionLimit = 10
	}
	if cfg.SubmissionWindow <= 0 {
		cfg.SubmissionWindow = time.Hour
	}
	if cfg.ResolutionPoints <= 0 {
		cfg.ResolutionPoints = 50
	}
	if cfg.TicketAttempts <= 0 {
		cfg.TicketAttempts = 5
	}
	if cfg.DuplicateRadiusMeters <= 0 {
		cfg.DuplicateRadiusMeters = 200
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = 5 * time.Second
	}
	if cfg.EmailMaxRetries < 0 {
		cfg.EmailMaxRetries = 0
	}
	if cfg.EmailRetryBackoff <= 0 {
		cfg.EmailRetryBackoff = 500 * time.Millisecond
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = inlineDispatcher{}
	}

	return &Service{
		cfg:           cfg,
		logger:        logger,
		complaints:    deps.Complaints,
		users:         deps.Users,
		notifications: deps.Notifications,
		outbox:        deps.Outbox,
		eventDedup:    deps.EventDedup,
		cache:         deps.Cache,
		locker:        deps.Locker,
		realtime:      deps.Realtime,
		email:         deps.Email,
		dispatcher:    dispatcher,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}
