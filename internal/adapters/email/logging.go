package email

import (
	"context"
	"log/slog"

	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

// LoggingSender stands in when no email provider is configured.
type LoggingSender struct {
	logger *slog.Logger
}

func NewLoggingSender(logger *slog.Logger) *LoggingSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingSender{logger: logger}
}

func (s *LoggingSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	s.logger.InfoContext(ctx, "email delivery skipped",
		"module", "email",
		"layer", "adapter",
		"operation", "send",
		"outcome", "logged",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

var _ ports.EmailSender = (*LoggingSender)(nil)
