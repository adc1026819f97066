package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"fintrack/internal/storage"
	txcontext "fintrack/pkg/platform/tx"
)

// Outbox writes events to the audit_outbox table. When the context carries a
// transaction the write joins it, so an event commits or rolls back with the
// data change it describes. Kafka is the downstream source of truth; the
// worker drains this table.
type Outbox struct {
	db *sql.DB
}

// NewOutbox creates a postgres-backed audit store.
func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

var _ Store = (*Outbox)(nil)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (o *Outbox) execer(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return o.db
}

// payload is the JSON shape published to Kafka.
type payload struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Subject    string `json:"subject"`
	Actor      string `json:"actor,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Append stages an event in the outbox.
func (o *Outbox) Append(ctx context.Context, event Event) error {
	body, err := json.Marshal(payload{
		ID:         event.ID.String(),
		Action:     string(event.Action),
		Subject:    event.Subject,
		Actor:      event.Actor,
		RequestID:  event.RequestID,
		OccurredAt: event.OccurredAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return storage.Translate(err, "marshal audit payload")
	}

	_, err = o.execer(ctx).ExecContext(ctx, `
		INSERT INTO audit_outbox (id, action, subject, actor, request_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID.String(), string(event.Action), event.Subject, event.Actor,
		event.RequestID, body, event.OccurredAt)
	if err != nil {
		return storage.Translate(err, "append audit outbox")
	}
	return nil
}

// Entry is one undelivered outbox row.
type Entry struct {
	ID      string
	Action  string
	Payload []byte
}

// ListUnpublished returns up to limit undelivered entries, oldest first.
// SKIP LOCKED lets several workers drain without stepping on each other.
func (o *Outbox) ListUnpublished(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT id, action, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY occurred_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, storage.Translate(err, "list audit outbox")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.Payload); err != nil {
			return nil, storage.Translate(err, "list audit outbox")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Translate(err, "list audit outbox")
	}
	return out, nil
}

// MarkPublished stamps entries as delivered.
func (o *Outbox) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := o.db.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = $1 WHERE id = ANY($2)`,
		time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return storage.Translate(err, "mark audit outbox published")
	}
	return nil
}
