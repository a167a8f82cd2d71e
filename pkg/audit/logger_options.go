package audit

import (
	"context"
	"time"
)

// Option configures Logger behavior during initialization
type Option func(*Logger)

// Context extractors populate events from request context. If extraction fails,
// the corresponding event field stays empty.

func WithRequestIDExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.requestIDExtractor = fn
	}
}

func WithIPExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.ipExtractor = fn
	}
}

func WithUserAgentExtractor(fn func(ctx context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.userAgentExtractor = fn
	}
}

// WithHasher replaces the default unkeyed SHA-256 input hasher.
func WithHasher(h InputHasher) Option {
	return func(l *Logger) {
		if h != nil {
			l.hasher = h
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}
