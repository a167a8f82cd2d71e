package requestctx

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/inputguard/pkg/audit"
	"github.com/dmitrymomot/inputguard/pkg/logger"
)

// AuditOptions fills audit events from the request metadata in the context.
func AuditOptions() []audit.Option {
	return []audit.Option{
		audit.WithRequestIDExtractor(RequestID),
		audit.WithIPExtractor(IP),
		audit.WithUserAgentExtractor(UserAgent),
	}
}

// LoggerExtractor adds the request ID to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := RequestID(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.RequestID(id), true
	}
}
