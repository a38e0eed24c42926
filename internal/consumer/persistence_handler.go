package consumer

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of pgx used by PersistenceHandler.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createEventLogTable = `CREATE TABLE IF NOT EXISTS workout_event_log (
    id BIGSERIAL PRIMARY KEY,
    event_id TEXT,
    event_type TEXT NOT NULL,
    workout_id TEXT,
    topic TEXT NOT NULL,
    partition INT NOT NULL,
    record_offset BIGINT NOT NULL,
    payload JSONB NOT NULL,
    received_at TIMESTAMPTZ NOT NULL,
    UNIQUE (topic, partition, record_offset)
)`

// PersistenceHandler writes consumed events into Postgres for auditing.
type PersistenceHandler struct {
	db Execer
}

// NewPersistenceHandler constructs a handler backed by the provided pool.
func NewPersistenceHandler(db Execer) *PersistenceHandler {
	return &PersistenceHandler{db: db}
}

// EnsureSchema creates the workout_event_log table when missing.
func (h *PersistenceHandler) EnsureSchema(ctx context.Context) error {
	_, err := h.db.Exec(ctx, createEventLogTable)
	return err
}

// Handle stores the event payload in the workout_event_log table. Replayed
// offsets are ignored.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	_, err := h.db.Exec(ctx,
		`INSERT INTO workout_event_log (event_id, event_type, workout_id, topic, partition, record_offset, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		nullIfEmpty(msg.EventID),
		msg.EventType,
		nullIfEmpty(msg.Key),
		msg.Topic,
		msg.Partition,
		msg.Offset,
		[]byte(msg.Payload),
		msg.Timestamp,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
