package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// AuditStore persists a session's event sequence to the session_events
// table for later replay. Writes are best-effort and never block the
// stream: a failed audit write is logged and dropped, never surfaced to
// the client.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore builds an AuditStore backed by db.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record persists one (sequence, event) pair for sessionID. Call
// asynchronously (e.g. via RecordAsync) from the hot streaming path so a
// slow or failing database never delays event delivery.
func (s *AuditStore) Record(ctx context.Context, sessionID uuid.UUID, sequence int, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_events (id, session_id, sequence, event_type, payload) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), sessionID, sequence, string(e.Type), payload)
	return err
}

// RecordAsync records e in a background goroutine, logging (not
// returning) any failure. ctx should be independent of the request
// context so a client disconnect doesn't also cancel the audit write.
func (s *AuditStore) RecordAsync(ctx context.Context, sessionID uuid.UUID, sequence int, e Event) {
	go func() {
		if err := s.Record(ctx, sessionID, sequence, e); err != nil {
			slog.Error("session event audit write failed", "session_id", sessionID, "sequence", sequence, "error", err)
		}
	}()
}

// RecordedEvent is one row replayed from the audit trail.
type RecordedEvent struct {
	Sequence int
	Event    Event
}

// Replay returns a completed session's recorded event sequence in order,
// for debugging.
func (s *AuditStore) Replay(ctx context.Context, sessionID uuid.UUID) ([]RecordedEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence, event_type, payload FROM session_events WHERE session_id = $1 ORDER BY sequence ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordedEvent
	for rows.Next() {
		var seq int
		var eventType string
		var payload []byte
		if err := rows.Scan(&seq, &eventType, &payload); err != nil {
			return nil, err
		}
		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		out = append(out, RecordedEvent{Sequence: seq, Event: e})
	}
	return out, rows.Err()
}
