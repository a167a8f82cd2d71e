package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultTable is the table created by the bundled migrations.
const DefaultTable = "intrusion_events"

var eventColumns = []string{
	"id", "action", "context", "rule", "kind", "pattern", "codecs", "reason",
	"input_hash", "request_id", "ip", "user_agent", "metadata", "created_at",
}

// Copier is the subset of pgx used by PostgresStorage. *pgxpool.Pool and
// *pgx.Conn satisfy it.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresStorage writes events with COPY, which makes it a good fit behind AsyncWriter.
type PostgresStorage struct {
	db    Copier
	table pgx.Identifier
}

// NewPostgresStorage creates a storage writing to table, or DefaultTable when empty.
func NewPostgresStorage(db Copier, table string) *PostgresStorage {
	if db == nil {
		panic("audit: postgres connection cannot be nil")
	}
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStorage{db: db, table: pgx.Identifier{table}}
}

func (s *PostgresStorage) Store(ctx context.Context, event Event) error {
	return s.StoreBatch(ctx, []Event{event})
}

func (s *PostgresStorage) StoreBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return fmt.Errorf("%w: id: %w", ErrInvalidEvent, err)
		}
		codecs := e.Codecs
		if codecs == nil {
			codecs = []string{}
		}
		rows = append(rows, []any{
			id, e.Action, e.Context, e.Rule, e.Kind, e.Pattern, codecs, e.Reason,
			e.InputHash, e.RequestID, e.IP, e.UserAgent, e.Metadata, e.CreatedAt,
		})
	}

	n, err := s.db.CopyFrom(ctx, s.table, eventColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("%w: copy into %s: %w", ErrStorageNotAvailable, s.table.Sanitize(), err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("%w: copied %d of %d events", ErrStorageNotAvailable, n, len(rows))
	}
	return nil
}
