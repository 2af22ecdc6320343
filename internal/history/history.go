// Package history is the append-only audit ledger of request lifecycle
// transitions. Entries are never updated or deleted; the ledger write joins
// the same transaction as the mutation it documents.
package history

import (
	"context"
	"time"

	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/requestcontext"
)

// Action is the kind of lifecycle event an entry records.
type Action string

const (
	ActionCreated   Action = "created"
	ActionClaimed   Action = "claimed"
	ActionFulfilled Action = "fulfilled"
	ActionUpdated   Action = "updated"
	ActionNoteAdded Action = "note_added"
	ActionDenied    Action = "denied"
	ActionApproved  Action = "approved"
	ActionReleased  Action = "released"
	ActionDeleted   Action = "deleted"
)

// Entry is one immutable ledger row.
type Entry struct {
	ID          id.HistoryID
	RequestID   id.RequestID
	ActorID     id.AccountID
	Action      Action
	Description string
	Timestamp   time.Time
}

// Store persists ledger entries. Append-only: no update or delete exists.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	ListByRequest(ctx context.Context, requestID id.RequestID) ([]*Entry, error)
}

// Ledger is the public recording surface used by the lifecycle service.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Record appends one entry for the given request. The timestamp comes from
// the request-scoped clock so all side effects of one transition agree.
func (l *Ledger) Record(ctx context.Context, requestID id.RequestID, actorID id.AccountID, action Action, description string) (*Entry, error) {
	e := &Entry{
		ID:          id.NewHistoryID(),
		RequestID:   requestID,
		ActorID:     actorID,
		Action:      action,
		Description: description,
		Timestamp:   requestcontext.Now(ctx),
	}
	if err := l.store.Append(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record history")
	}
	return e, nil
}

// Timeline returns a request's entries ordered oldest first.
func (l *Ledger) Timeline(ctx context.Context, requestID id.RequestID) ([]*Entry, error) {
	entries, err := l.store.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	return entries, nil
}
