package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/cache"
	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/dispatch"
	emailadapter "github.com/abx15/JanSankalp-AI-sub002/internal/adapters/email"
	eventadapter "github.com/abx15/JanSankalp-AI-sub002/internal/adapters/events"
	httpadapter "github.com/abx15/JanSankalp-AI-sub002/internal/adapters/http"
	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/metrics"
	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/postgres"
	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/realtime"
	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/security"
	"github.com/abx15/JanSankalp-AI-sub002/internal/application"
	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Runtime owns the shared infrastructure of both processes. The api and
// worker commands build the same Runtime and run different loops on it.
type Runtime struct {
	cfg      Config
	logger   *slog.Logger
	db       *gorm.DB
	redis    *redis.Client
	repos    postgres.Repositories
	service  *application.Service
	pool     *dispatch.Pool
	registry *prometheus.Registry
	closers  []io.Closer
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	var emailSender ports.EmailSender = emailadapter.NewLoggingSender(logger)
	if cfg.ResendAPIKey != "" {
		resendSender, sendErr := emailadapter.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		if sendErr != nil {
			_ = redisClient.Close()
			_ = sqlDB.Close()
			return nil, sendErr
		}
		emailSender = resendSender
	} else {
		logger.WarnContext(ctx, "RESEND_API_KEY not set, emails will only be logged",
			"module", "bootstrap",
			"layer", "runtime",
			"operation", "configure_email",
			"outcome", "degraded",
		)
	}

	pool := dispatch.NewPool(logger, dispatch.Config{
		Workers:      cfg.FanoutWorkers,
		QueueSize:    cfg.FanoutQueueSize,
		EmailShare:   cfg.FanoutEmailShare,
		DrainTimeout: cfg.FanoutDrainTimeout,
	})

	repos := postgres.NewRepositories(db)
	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceID,
			EventDedupTTL:     cfg.EventDedupTTL,
			LockTTL:           cfg.LockTTL,
			LockWait:          cfg.LockWait,
			SubmissionLimit:   cfg.SubmissionLimit,
			SubmissionWindow:  cfg.SubmissionWindow,
			ResolutionPoints:  cfg.ResolutionPoints,
			EmailTimeout:      cfg.EmailTimeout,
			EmailMaxRetries:   cfg.EmailMaxRetries,
			EmailRetryBackoff: cfg.EmailRetryBackoff,
		},
		Logger:        logger,
		Complaints:    repos.Complaints,
		Users:         repos.Users,
		Notifications: repos.Notifications,
		Outbox:        repos.Outbox,
		EventDedup:    repos.EventDedup,
		Cache:         cache.NewRedisCache(redisClient),
		Locker:        cache.NewRedisLocker(redisClient),
		Realtime:      realtime.NewRedisPublisher(redisClient),
		Email:         emailSender,
		Dispatcher:    pool,
	})

	return &Runtime{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		redis:    redisClient,
		repos:    repos,
		service:  service,
		pool:     pool,
		registry: registry,
		closers:  []io.Closer{redisClient, sqlDB},
	}, nil
}

func newLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With("service", cfg.ServiceID)
}

// RunAPI serves HTTP, the websocket hub and gRPC health until interrupted.
func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.cleanup()

	verifier, err := security.NewHMACVerifier(r.cfg.JWTSecret, r.cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("configure session verifier: %w", err)
	}
	hub := realtime.NewHub(r.logger)
	handler := httpadapter.NewHandler(r.service, httpadapter.HandlerOptions{
		Verifier:       verifier,
		Hub:            hub,
		Ready:          r.ready,
		OriginPatterns: r.cfg.WSAllowedOrigins,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", r.cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler, promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.pool.Run(gctx) })
	g.Go(func() error { return realtime.Relay(gctx, r.redis, hub, r.logger) })
	g.Go(func() error { return serveHTTP(gctx, httpServer) })
	g.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthSrv.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})

	r.logger.InfoContext(ctx, "api started",
		"module", "bootstrap",
		"layer", "runtime",
		"operation", "run_api",
		"outcome", "success",
		"http_port", r.cfg.HTTPPort,
		"grpc_port", r.cfg.GRPCPort,
	)
	return r.finish(ctx, g.Wait())
}

// RunWorker runs the event bridge workers, the outbox relay, the marker
// sweeper and the fanout pool until interrupted.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.cleanup()

	bridges, err := r.buildBridges(ctx)
	if err != nil {
		return err
	}
	publisher := r.buildPublisher(ctx)
	outbox := eventadapter.NewOutboxWorker(r.logger, r.repos.Outbox, publisher, eventadapter.OutboxConfig{
		PollInterval: r.cfg.OutboxPollInterval,
		BatchSize:    r.cfg.OutboxBatchSize,
		MaxRetries:   r.cfg.OutboxMaxRetries,
	})
	sweeper := eventadapter.NewDedupSweeper(r.logger, r.repos.EventDedup, r.cfg.EventDedupSweepInterval)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", r.cfg.MetricsPort),
		Handler:           promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.pool.Run(gctx) })
	g.Go(func() error { return ignoreCanceled(outbox.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(sweeper.Run(gctx)) })
	g.Go(func() error { return serveHTTP(gctx, metricsServer) })
	for _, bridge := range bridges {
		bridge := bridge
		g.Go(func() error { return ignoreCanceled(bridge.Run(gctx)) })
	}

	r.logger.InfoContext(ctx, "worker started",
		"module", "bootstrap",
		"layer", "runtime",
		"operation", "run_worker",
		"outcome", "success",
		"bridge_workers", len(bridges),
		"topics", r.cfg.bridgeTopics(),
	)
	return r.finish(ctx, g.Wait())
}

// buildBridges gives every worker its own consumer-group member so the
// broker spreads partitions across them.
func (r *Runtime) buildBridges(ctx context.Context) ([]*eventadapter.Bridge, error) {
	bridgeCfg := eventadapter.BridgeConfig{
		InitialBackoff: r.cfg.BridgeInitialBackoff,
		MaxBackoff:     r.cfg.BridgeMaxBackoff,
		CommitAttempts: r.cfg.BridgeCommitAttempts,
	}
	bridges := make([]*eventadapter.Bridge, 0, r.cfg.BridgeWorkers)
	for i := 0; i < r.cfg.BridgeWorkers; i++ {
		name := fmt.Sprintf("bridge-%d", i)
		var consumer ports.EventConsumer = eventadapter.NewNoopConsumer()
		if len(r.cfg.KafkaBrokers) > 0 {
			kafkaConsumer, err := eventadapter.NewKafkaConsumer(eventadapter.KafkaConsumerConfig{
				Brokers:  r.cfg.KafkaBrokers,
				GroupID:  r.cfg.KafkaConsumerGroup,
				Topics:   r.cfg.bridgeTopics(),
				ClientID: fmt.Sprintf("%s-%s", r.cfg.KafkaClientID, name),
			})
			if err != nil {
				return nil, fmt.Errorf("kafka consumer %s: %w", name, err)
			}
			consumer = kafkaConsumer
			r.closers = append(r.closers, kafkaConsumer)
		} else if i == 0 {
			r.logger.WarnContext(ctx, "KAFKA_BROKERS not set, event bridge idles",
				"module", "bootstrap",
				"layer", "runtime",
				"operation", "build_bridges",
				"outcome", "degraded",
			)
		}
		bridges = append(bridges, eventadapter.NewBridge(r.logger, name, consumer, topicRouter{
			service: r.service,
			topics: map[string]string{
				r.cfg.KafkaTopicProcessed: domain.TopicComplaintProcessed,
				r.cfg.KafkaTopicRejected:  domain.TopicComplaintRejected,
			},
		}, bridgeCfg))
	}
	return bridges, nil
}

func (r *Runtime) buildPublisher(ctx context.Context) ports.EventPublisher {
	if len(r.cfg.KafkaBrokers) == 0 {
		return eventadapter.NewLoggingPublisher(r.logger)
	}
	kafkaPublisher, err := eventadapter.NewKafkaPublisher(r.cfg.KafkaBrokers, map[string]string{
		domain.TopicComplaintSubmitted: r.cfg.KafkaTopicSubmitted,
		domain.TopicComplaintResolved:  r.cfg.KafkaTopicResolved,
	}, 0)
	if err != nil {
		r.logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher",
			"module", "bootstrap",
			"layer", "runtime",
			"operation", "build_publisher",
			"outcome", "degraded",
			"error", err,
		)
		return eventadapter.NewLoggingPublisher(r.logger)
	}
	r.closers = append(r.closers, kafkaPublisher)
	return kafkaPublisher
}

func (r *Runtime) ready(ctx context.Context) error {
	if err := postgres.Ping(ctx, r.db); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.redis.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (r *Runtime) finish(ctx context.Context, err error) error {
	if err != nil {
		r.logger.ErrorContext(ctx, "runtime failure",
			"module", "bootstrap",
			"layer", "runtime",
			"operation", "run",
			"outcome", "failure",
			"error", err,
		)
		return err
	}
	r.logger.Info("runtime stopped",
		"module", "bootstrap",
		"layer", "runtime",
		"operation", "run",
		"outcome", "success",
	)
	return nil
}

func (r *Runtime) cleanup() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i].Close()
	}
}

// topicRouter maps configured broker topic names back to the canonical
// event types the service understands.
type topicRouter struct {
	service *application.Service
	topics  map[string]string
}

func (t topicRouter) HandleEvent(ctx context.Context, topic string, payload []byte) error {
	if canonical, ok := t.topics[topic]; ok {
		topic = canonical
	}
	return t.service.HandleEvent(ctx, topic, payload)
}

func serveHTTP(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
