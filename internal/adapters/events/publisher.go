package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LoggingPublisher stands in for the broker when no Kafka brokers are
// configured. Outbox records are logged and marked published, so the
// classifier never sees them.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger}
}

// outboxHeader is the part of an outbox envelope worth logging.
type outboxHeader struct {
	EventID       string `json:"event_id"`
	SchemaVersion string `json:"schema_version"`
	Data          struct {
		TicketID string `json:"ticketId"`
	} `json:"data"`
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, complaintID string) error {
	var header outboxHeader
	_ = json.Unmarshal(payload, &header)
	p.logger.InfoContext(ctx, "complaint event not sent; no broker configured",
		"module", "events.publisher",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "skipped",
		"event_type", eventType,
		"event_id", header.EventID,
		"schema_version", header.SchemaVersion,
		"complaint_id", complaintID,
		"ticket_id", header.Data.TicketID,
		"payload_bytes", len(payload),
	)
	return nil
}
