// Package audit records domain-significant actions through a transactional
// outbox. Events are staged on the unit of work, written to the outbox in
// the same transaction as the data they describe, and published to Kafka by
// a background worker.
package audit

//go:generate mockgen -destination=mocks/mocks.go -package=mocks fintrack/internal/platform/audit Store,Sink,Deduper

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names a recorded domain action.
type Action string

const (
	ActionUserRegistered      Action = "user.registered"
	ActionUserDeactivated     Action = "user.deactivated"
	ActionAccountOpened       Action = "account.opened"
	ActionAccountClosed       Action = "account.closed"
	ActionTransactionRecorded Action = "transaction.recorded"
	ActionBudgetPlanned       Action = "budget.planned"
)

// Event captures one action against one aggregate. Subject is the id of the
// aggregate acted on; Actor is who did it (a user id, or "system").
type Event struct {
	ID         uuid.UUID
	Action     Action
	Subject    string
	Actor      string
	RequestID  string
	OccurredAt time.Time
}

// NewEvent builds an event with a fresh id, defaulting OccurredAt to now.
func NewEvent(action Action, subject, actor string) Event {
	return Event{
		ID:         uuid.New(),
		Action:     action,
		Subject:    subject,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

// Store persists events. The postgres implementation writes the outbox and
// joins the caller's transaction when one is in context.
type Store interface {
	Append(ctx context.Context, event Event) error
}
