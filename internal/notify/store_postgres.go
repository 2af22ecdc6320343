package notify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
	txcontext "matchport/pkg/platform/tx"
)

// PostgresStore persists notifications. Create joins the lifecycle
// transaction from context so the row commits with the transition that
// caused it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, n *Notification) error {
	var requestID any
	if n.RequestID != nil {
		requestID = uuid.UUID(*n.RequestID)
	}
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO notifications (id, request_id, notification_type, title, message, recipient_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(n.ID), requestID, string(n.Type), n.Title, n.Message, uuid.UUID(n.RecipientID), n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipient id.AccountID) ([]*Notification, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, request_id, notification_type, title, message, recipient_id, is_read, created_at
		FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC
	`, uuid.UUID(recipient))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var (
			n          Notification
			nid, recip uuid.UUID
			reqID      *uuid.UUID
		)
		if err := rows.Scan(&nid, &reqID, (*string)(&n.Type), &n.Title, &n.Message, &recip, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = id.NotificationID(nid)
		n.RecipientID = id.AccountID(recip)
		if reqID != nil {
			rid := id.RequestID(*reqID)
			n.RequestID = &rid
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountUnread(ctx context.Context, recipient id.AccountID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`,
		uuid.UUID(recipient)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, recipient id.AccountID, notificationID id.NotificationID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2`,
		uuid.UUID(notificationID), uuid.UUID(recipient))
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, recipient id.AccountID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE recipient_id = $1`, uuid.UUID(recipient))
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
