package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	LogLevel  string

	HTTPPort    int
	GRPCPort    int
	MetricsPort int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	MaxDBConns   int32

	KafkaConsumerGroup  string
	KafkaClientID       string
	KafkaTopicProcessed string
	KafkaTopicRejected  string
	KafkaTopicSubmitted string
	KafkaTopicResolved  string

	BridgeWorkers        int
	BridgeInitialBackoff time.Duration
	BridgeMaxBackoff     time.Duration
	BridgeCommitAttempts int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int

	FanoutWorkers      int
	FanoutQueueSize    int
	FanoutEmailShare   float64
	FanoutDrainTimeout time.Duration

	EventDedupTTL           time.Duration
	EventDedupSweepInterval time.Duration
	LockTTL                 time.Duration
	LockWait                time.Duration
	SubmissionLimit         int
	SubmissionWindow        time.Duration
	ResolutionPoints        int

	ResendAPIKey      string
	EmailFrom         string
	EmailMaxRetries   int
	EmailTimeout      time.Duration
	EmailRetryBackoff time.Duration

	JWTSecret        string
	JWTIssuer        string
	WSAllowedOrigins []string
}

type configFile struct {
	Service struct {
		ID          string `yaml:"id"`
		LogLevel    string `yaml:"log_level"`
		HTTPPort    int    `yaml:"http_port"`
		GRPCPort    int    `yaml:"grpc_port"`
		MetricsPort int    `yaml:"metrics_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL        string   `yaml:"postgres_url"`
		RedisURL           string   `yaml:"redis_url"`
		KafkaBrokers       []string `yaml:"kafka_brokers"`
		KafkaConsumerGroup string   `yaml:"kafka_consumer_group"`
		KafkaClientID      string   `yaml:"kafka_client_id"`
	} `yaml:"dependencies"`
	Topics struct {
		Processed string `yaml:"complaint_processed"`
		Rejected  string `yaml:"complaint_rejected"`
		Submitted string `yaml:"complaint_submitted"`
		Resolved  string `yaml:"complaint_resolved"`
	} `yaml:"topics"`
	Bridge struct {
		Workers        int           `yaml:"workers"`
		InitialBackoff time.Duration `yaml:"initial_backoff"`
		MaxBackoff     time.Duration `yaml:"max_backoff"`
		CommitAttempts int           `yaml:"commit_attempts"`
		DedupTTL       time.Duration `yaml:"dedup_ttl"`
		DedupSweep     time.Duration `yaml:"dedup_sweep_interval"`
	} `yaml:"bridge"`
	Fanout struct {
		Workers      int           `yaml:"workers"`
		QueueSize    int           `yaml:"queue_size"`
		EmailShare   float64       `yaml:"email_share"`
		DrainTimeout time.Duration `yaml:"drain_timeout"`
	} `yaml:"fanout"`
	Email struct {
		From         string        `yaml:"from"`
		MaxRetries   *int          `yaml:"max_retries"`
		Timeout      time.Duration `yaml:"timeout"`
		RetryBackoff time.Duration `yaml:"retry_backoff"`
	} `yaml:"email"`
	Auth struct {
		JWTIssuer        string   `yaml:"jwt_issuer"`
		WSAllowedOrigins []string `yaml:"ws_allowed_origins"`
	} `yaml:"auth"`
}

// LoadConfig layers defaults, an optional .env file, the YAML file at path
// and the process environment, in that order of precedence (lowest first).
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "jansankalp-pipeline",
		LogLevel:             "info",
		HTTPPort:             8080,
		GRPCPort:             9090,
		MetricsPort:          9100,
		MaxDBConns:           20,
		KafkaConsumerGroup:   "jansankalp-event-bridge",
		KafkaClientID:        "jansankalp-pipeline",
		KafkaTopicProcessed:  "complaint_processed",
		KafkaTopicRejected:   "complaint_rejected",
		KafkaTopicSubmitted:  "complaint_submitted",
		KafkaTopicResolved:   "complaint_resolved",
		BridgeWorkers:        2,
		BridgeInitialBackoff: 500 * time.Millisecond,
		BridgeMaxBackoff:     30 * time.Second,
		BridgeCommitAttempts: 3,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		OutboxMaxRetries:     5,
		FanoutWorkers:        4,
		FanoutQueueSize:      256,
		FanoutEmailShare:     0.75,
		FanoutDrainTimeout:   10 * time.Second,
		EventDedupTTL:        7 * 24 * time.Hour,
		LockTTL:              30 * time.Second,
		LockWait:             5 * time.Second,
		SubmissionLimit:      10,
		SubmissionWindow:     time.Hour,
		ResolutionPoints:     50,
		EmailFrom:            "JanSankalp AI <notifications@jansankalp.in>",
		EmailMaxRetries:      2,
		EmailTimeout:         5 * time.Second,
		EmailRetryBackoff:    500 * time.Millisecond,

		EventDedupSweepInterval: time.Hour,
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if applyErr := applyFile(&cfg, raw); applyErr != nil {
			return Config{}, applyErr
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	setString(&cfg.ServiceID, f.Service.ID)
	setString(&cfg.LogLevel, f.Service.LogLevel)
	setInt(&cfg.HTTPPort, f.Service.HTTPPort)
	setInt(&cfg.GRPCPort, f.Service.GRPCPort)
	setInt(&cfg.MetricsPort, f.Service.MetricsPort)

	setString(&cfg.DatabaseURL, f.Dependencies.PostgresURL)
	setString(&cfg.RedisURL, f.Dependencies.RedisURL)
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	setString(&cfg.KafkaConsumerGroup, f.Dependencies.KafkaConsumerGroup)
	setString(&cfg.KafkaClientID, f.Dependencies.KafkaClientID)

	setString(&cfg.KafkaTopicProcessed, f.Topics.Processed)
	setString(&cfg.KafkaTopicRejected, f.Topics.Rejected)
	setString(&cfg.KafkaTopicSubmitted, f.Topics.Submitted)
	setString(&cfg.KafkaTopicResolved, f.Topics.Resolved)

	setInt(&cfg.BridgeWorkers, f.Bridge.Workers)
	setDuration(&cfg.BridgeInitialBackoff, f.Bridge.InitialBackoff)
	setDuration(&cfg.BridgeMaxBackoff, f.Bridge.MaxBackoff)
	setInt(&cfg.BridgeCommitAttempts, f.Bridge.CommitAttempts)
	setDuration(&cfg.EventDedupTTL, f.Bridge.DedupTTL)
	setDuration(&cfg.EventDedupSweepInterval, f.Bridge.DedupSweep)

	setInt(&cfg.FanoutWorkers, f.Fanout.Workers)
	setInt(&cfg.FanoutQueueSize, f.Fanout.QueueSize)
	if f.Fanout.EmailShare > 0 {
		cfg.FanoutEmailShare = f.Fanout.EmailShare
	}
	setDuration(&cfg.FanoutDrainTimeout, f.Fanout.DrainTimeout)

	setString(&cfg.EmailFrom, f.Email.From)
	if f.Email.MaxRetries != nil {
		cfg.EmailMaxRetries = *f.Email.MaxRetries
	}
	setDuration(&cfg.EmailTimeout, f.Email.Timeout)
	setDuration(&cfg.EmailRetryBackoff, f.Email.RetryBackoff)

	setString(&cfg.JWTIssuer, f.Auth.JWTIssuer)
	if len(f.Auth.WSAllowedOrigins) > 0 {
		cfg.WSAllowedOrigins = trimNonEmpty(f.Auth.WSAllowedOrigins)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MetricsPort = envInt("METRICS_PORT", cfg.MetricsPort)

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("DATABASE_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.KafkaClientID = envOrDefault("KAFKA_CLIENT_ID", cfg.KafkaClientID)
	cfg.KafkaTopicProcessed = envOrDefault("KAFKA_TOPIC_COMPLAINT_PROCESSED", cfg.KafkaTopicProcessed)
	cfg.KafkaTopicRejected = envOrDefault("KAFKA_TOPIC_COMPLAINT_REJECTED", cfg.KafkaTopicRejected)
	cfg.KafkaTopicSubmitted = envOrDefault("KAFKA_TOPIC_COMPLAINT_SUBMITTED", cfg.KafkaTopicSubmitted)
	cfg.KafkaTopicResolved = envOrDefault("KAFKA_TOPIC_COMPLAINT_RESOLVED", cfg.KafkaTopicResolved)

	cfg.BridgeWorkers = envInt("BRIDGE_WORKERS", cfg.BridgeWorkers)
	cfg.BridgeInitialBackoff = envDuration("BRIDGE_INITIAL_BACKOFF", cfg.BridgeInitialBackoff)
	cfg.BridgeMaxBackoff = envDuration("BRIDGE_MAX_BACKOFF", cfg.BridgeMaxBackoff)
	cfg.BridgeCommitAttempts = envInt("BRIDGE_COMMIT_ATTEMPTS", cfg.BridgeCommitAttempts)

	cfg.OutboxPollInterval = envDuration("OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	cfg.FanoutWorkers = envInt("FANOUT_WORKERS", cfg.FanoutWorkers)
	cfg.FanoutQueueSize = envInt("FANOUT_QUEUE_SIZE", cfg.FanoutQueueSize)
	cfg.FanoutEmailShare = envFloat("FANOUT_EMAIL_SHARE", cfg.FanoutEmailShare)
	cfg.FanoutDrainTimeout = envDuration("FANOUT_DRAIN_TIMEOUT", cfg.FanoutDrainTimeout)

	cfg.EventDedupTTL = envDuration("EVENT_DEDUP_TTL", cfg.EventDedupTTL)
	cfg.EventDedupSweepInterval = envDuration("EVENT_DEDUP_SWEEP_INTERVAL", cfg.EventDedupSweepInterval)
	cfg.LockTTL = envDuration("COMPLAINT_LOCK_TTL", cfg.LockTTL)
	cfg.LockWait = envDuration("COMPLAINT_LOCK_WAIT", cfg.LockWait)
	cfg.SubmissionLimit = envInt("SUBMISSION_RATE_LIMIT", cfg.SubmissionLimit)
	cfg.SubmissionWindow = envDuration("SUBMISSION_RATE_WINDOW", cfg.SubmissionWindow)
	cfg.ResolutionPoints = envInt("RESOLUTION_POINTS", cfg.ResolutionPoints)

	cfg.ResendAPIKey = envOrDefault("RESEND_API_KEY", cfg.ResendAPIKey)
	cfg.EmailFrom = envOrDefault("EMAIL_FROM", cfg.EmailFrom)
	cfg.EmailMaxRetries = envInt("EMAIL_MAX_RETRIES", cfg.EmailMaxRetries)
	cfg.EmailTimeout = envDuration("EMAIL_TIMEOUT", cfg.EmailTimeout)
	cfg.EmailRetryBackoff = envDuration("EMAIL_RETRY_BACKOFF", cfg.EmailRetryBackoff)

	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = envOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.WSAllowedOrigins = envCSV("WS_ALLOWED_ORIGINS", cfg.WSAllowedOrigins)
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing DB_URL/DATABASE_URL")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("missing REDIS_URL")
	}
	if c.BridgeWorkers < 1 {
		return fmt.Errorf("BRIDGE_WORKERS must be at least 1")
	}
	if c.FanoutWorkers < 1 || c.FanoutQueueSize < 1 {
		return fmt.Errorf("FANOUT_WORKERS and FANOUT_QUEUE_SIZE must be positive")
	}
	if c.FanoutEmailShare <= 0 || c.FanoutEmailShare > 1 {
		return fmt.Errorf("FANOUT_EMAIL_SHARE must be in (0, 1]")
	}
	if c.EmailMaxRetries < 0 {
		return fmt.Errorf("EMAIL_MAX_RETRIES must not be negative")
	}
	if c.BridgeMaxBackoff < c.BridgeInitialBackoff {
		return fmt.Errorf("BRIDGE_MAX_BACKOFF must not be below BRIDGE_INITIAL_BACKOFF")
	}
	return nil
}

// bridgeTopics are the topics the event bridge consumes.
func (c Config) bridgeTopics() []string {
	return []string{c.KafkaTopicProcessed, c.KafkaTopicRejected}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
