package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream RedisStorage writes to.
const DefaultStream = "inputguard:intrusions"

// StreamAdder is the subset of the go-redis client used by RedisStorage.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStorage appends events to a Redis stream, trimmed approximately to MaxLen.
type RedisStorage struct {
	client StreamAdder
	stream string
	maxLen int64
}

// RedisOption configures RedisStorage.
type RedisOption func(*RedisStorage)

// WithStream sets the stream key.
func WithStream(name string) RedisOption {
	return func(s *RedisStorage) {
		if name != "" {
			s.stream = name
		}
	}
}

// WithMaxLen caps the stream length. Zero keeps every entry.
func WithMaxLen(n int64) RedisOption {
	return func(s *RedisStorage) {
		if n >= 0 {
			s.maxLen = n
		}
	}
}

// NewRedisStorage creates a stream-backed storage. *redis.Client satisfies StreamAdder.
func NewRedisStorage(client StreamAdder, opts ...RedisOption) *RedisStorage {
	if client == nil {
		panic("audit: redis client cannot be nil")
	}
	s := &RedisStorage{client: client, stream: DefaultStream, maxLen: 100_000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) Store(ctx context.Context, event Event) error {
	values, err := streamValues(event)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%w: xadd %s: %w", ErrStorageNotAvailable, s.stream, err)
	}
	return nil
}

// StoreBatch appends events one by one; a stream has no multi-entry append.
// It stops at the first failure.
func (s *RedisStorage) StoreBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		if err := s.Store(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func streamValues(e Event) (map[string]any, error) {
	values := map[string]any{
		"id":         e.ID,
		"action":     e.Action,
		"context":    e.Context,
		"rule":       e.Rule,
		"kind":       e.Kind,
		"pattern":    e.Pattern,
		"codecs":     strings.Join(e.Codecs, ","),
		"reason":     e.Reason,
		"input_hash": e.InputHash,
		"request_id": e.RequestID,
		"ip":         e.IP,
		"user_agent": e.UserAgent,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(e.Metadata) > 0 {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata: %w", ErrInvalidEvent, err)
		}
		values["metadata"] = string(meta)
	}
	return values, nil
}
