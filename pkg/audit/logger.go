package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextExtractor extracts a string value from context, reporting whether it was found.
type contextExtractor func(context.Context) (string, bool)

// Logger turns intrusion reports into audit events.
type Logger struct {
	storage            Storage
	hasher             InputHasher
	requestIDExtractor contextExtractor
	ipExtractor        contextExtractor
	userAgentExtractor contextExtractor
	now                func() time.Time
}

// NewLogger creates a Logger writing to storage. It panics if storage is nil.
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &Logger{
		storage: storage,
		hasher:  NewSHA256Hasher(nil),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordIntrusion stores an intrusion.detected event for in. Request metadata
// is taken from ctx through the configured extractors.
func (l *Logger) RecordIntrusion(ctx context.Context, in Intrusion, opts ...EventOption) error {
	event := l.eventFromContext(ctx)
	event.ID = uuid.New().String()
	event.Action = ActionIntrusionDetected
	event.CreatedAt = l.now().UTC()
	event.Context = in.Context
	event.Rule = in.Rule
	event.Kind = in.Kind
	event.Pattern = in.Pattern
	event.Codecs = append([]string(nil), in.Codecs...)
	event.Reason = in.Reason
	if in.Input != "" {
		event.InputHash = l.hasher.HashInput(in.Input)
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return l.storage.Store(ctx, event)
}

func (l *Logger) eventFromContext(ctx context.Context) Event {
	var event Event

	if l.requestIDExtractor != nil {
		if v, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = v
		}
	}
	if l.ipExtractor != nil {
		if v, ok := l.ipExtractor(ctx); ok {
			event.IP = v
		}
	}
	if l.userAgentExtractor != nil {
		if v, ok := l.userAgentExtractor(ctx); ok {
			event.UserAgent = v
		}
	}

	return event
}
