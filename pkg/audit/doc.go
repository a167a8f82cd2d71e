// Package audit records intrusion events reported by the validator.
//
// Logger.RecordIntrusion turns an Intrusion into an Event with a fresh UUID,
// a UTC timestamp and request metadata pulled from the context through
// optional extractors. The offending input is never stored: only its SHA-256
// (or HMAC-SHA256, see NewSHA256Hasher) fingerprint is kept, so repeated
// attacks can be correlated without turning the audit log into a second
// injection vector.
//
// # Storage
//
//   - MemoryStorage keeps events in a slice (tests, CLI).
//   - RedisStorage appends to a Redis stream with XADD and approximate MAXLEN.
//   - PostgresStorage copies batches into the intrusion_events table created
//     by the embedded goose migrations (see Migrations).
//
// AsyncWriter batches events for any BatchStorage. Store still returns the
// result of the write that included the event; when the queue is full the
// event is written synchronously rather than dropped.
//
//	pgStore := audit.NewPostgresStorage(pool, "")
//	auditLog, closeAudit := audit.NewAsyncLogger(pgStore, audit.AsyncOptions{},
//	    audit.WithRequestIDExtractor(requestIDFromContext),
//	)
//	defer closeAudit(context.Background())
package audit
