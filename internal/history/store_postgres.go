package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "matchport/pkg/domain"
	txcontext "matchport/pkg/platform/tx"
)

// PostgresStore persists ledger entries. Append joins the lifecycle
// transaction from context; a rolled-back transition leaves no entry.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, e *Entry) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO request_history (id, request_id, actor_id, action, description, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(e.ID), uuid.UUID(e.RequestID), uuid.UUID(e.ActorID), string(e.Action), e.Description, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRequest(ctx context.Context, requestID id.RequestID) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, actor_id, action, description, ts
		FROM request_history WHERE request_id = $1 ORDER BY ts ASC, id ASC
	`, uuid.UUID(requestID))
	if err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e               Entry
			eid, req, actor uuid.UUID
		)
		if err := rows.Scan(&eid, &req, &actor, (*string)(&e.Action), &e.Description, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.ID = id.HistoryID(eid)
		e.RequestID = id.RequestID(req)
		e.ActorID = id.AccountID(actor)
		out = append(out, &e)
	}
	return out, rows.Err()
}
