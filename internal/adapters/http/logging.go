package http

import (
	"context"
	"log/slog"
	"net/http"
)

func httpLogger() *slog.Logger {
	return slog.Default().With("module", "http", "layer", "adapter")
}

// logHTTPOperationError records a failed /v1 call with the caller's identity
// when the request got past authentication. 5xx responses log at error,
// everything else at warn.
func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	attrs := []slog.Attr{
		slog.String("module", "http"),
		slog.String("layer", "adapter"),
		slog.String("operation", operation),
		slog.String("outcome", "failure"),
		slog.Int("status_code", statusCode),
		slog.String("error_code", code),
		slog.String("message", message),
		slog.String("request_id", requestIDFromContext(ctx)),
	}
	if actor, ok := actorFromContext(ctx); ok {
		attrs = append(attrs,
			slog.String("user_id", actor.UserID),
			slog.String("role", string(actor.Role)),
		)
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Default().LogAttrs(ctx, level, "http operation failed", attrs...)
}
