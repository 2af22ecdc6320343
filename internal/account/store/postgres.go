package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"matchport/internal/account"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
	txcontext "matchport/pkg/platform/tx"
	"matchport/pkg/requestcontext"
)

// Postgres implements Store on a SQL database. Writes join the transaction
// from context when one is present so vetting updates and ledger appends
// commit atomically.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *Postgres) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, email, username, password_hash, role, phone, is_vetted, vetting_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(a.ID), a.Email, a.Username, a.PasswordHash, string(a.Role),
		a.Phone, a.IsVetted, a.VettingNote, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

const accountColumns = `id, email, username, password_hash, role, phone, is_vetted, vetting_note, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*account.Account, error) {
	var (
		a   account.Account
		uid uuid.UUID
	)
	err := row.Scan(&uid, &a.Email, &a.Username, &a.PasswordHash, (*string)(&a.Role),
		&a.Phone, &a.IsVetted, &a.VettingNote, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.ID = id.AccountID(uid)
	return &a, nil
}

func (s *Postgres) FindByID(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, uuid.UUID(accountID))
	return scanAccount(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email)
	return scanAccount(row)
}

func (s *Postgres) UpdateVetting(ctx context.Context, accountID id.AccountID, vetted bool, note string) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE accounts SET is_vetted = $2, vetting_note = $3, updated_at = $4 WHERE id = $1`,
		uuid.UUID(accountID), vetted, note, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update vetting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vetting rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) AppendVettingEvent(ctx context.Context, ev *account.VettingEvent) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO vetting_events (id, account_id, admin_id, vetted, note, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(ev.ID), uuid.UUID(ev.AccountID), uuid.UUID(ev.AdminID), ev.Vetted, ev.Note, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("insert vetting event: %w", err)
	}
	return nil
}

func (s *Postgres) ListVettingEvents(ctx context.Context, accountID id.AccountID) ([]*account.VettingEvent, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, account_id, admin_id, vetted, note, ts
		FROM vetting_events WHERE account_id = $1 ORDER BY ts ASC
	`, uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("list vetting events: %w", err)
	}
	defer rows.Close()

	var out []*account.VettingEvent
	for rows.Next() {
		var (
			ev              account.VettingEvent
			evID, acct, adm uuid.UUID
		)
		if err := rows.Scan(&evID, &acct, &adm, &ev.Vetted, &ev.Note, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan vetting event: %w", err)
		}
		ev.ID = id.HistoryID(evID)
		ev.AccountID = id.AccountID(acct)
		ev.AdminID = id.AccountID(adm)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func (s *Postgres) ListUnvettedCBOs(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = 'cbo' AND NOT is_vetted ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unvetted cbos: %w", err)
	}
	defer rows.Close()

	var out []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
