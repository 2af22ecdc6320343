package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
	txcontext "matchport/pkg/platform/tx"
)

// PostgresStore persists requests. Lifecycle writes join the transaction
// from context; CompareAndSwap guards the status column with a conditional
// UPDATE so concurrent transitions on the same row cannot both win.
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

const requestColumns = `id, organization_id, cause_area_id, donor_id, description, amount_cents,
	urgency, zipcode, metro_region, county, status, donor_note, denial_reason,
	created_at, updated_at, claimed_at, fulfilled_at, denied_at`

func (s *PostgresStore) Create(ctx context.Context, r *Request) error {
	q := s.q(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, s.requestArgs(r)...)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return s.replaceTags(ctx, r)
}

func (s *PostgresStore) requestArgs(r *Request) []any {
	var donorID any
	if r.DonorID != nil {
		donorID = uuid.UUID(*r.DonorID)
	}
	return []any{
		uuid.UUID(r.ID), uuid.UUID(r.OrgID), uuid.UUID(r.CauseAreaID), donorID,
		r.Description, r.AmountCents, string(r.Urgency), r.Zipcode,
		string(r.MetroRegion), string(r.County), string(r.Status),
		r.DonorNote, r.DenialReason, r.CreatedAt, r.UpdatedAt,
		r.ClaimedAt, r.FulfilledAt, r.DeniedAt,
	}
}

func (s *PostgresStore) replaceTags(ctx context.Context, r *Request) error {
	q := s.q(ctx)
	rid := uuid.UUID(r.ID)
	for table, ids := range map[string][]id.CategoryID{
		"request_identity_categories":  r.IdentityCategoryIDs,
		"request_challenge_categories": r.ChallengeCategoryIDs,
	} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE request_id = $1`, rid); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		for _, catID := range ids {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO `+table+` (request_id, category_id) VALUES ($1, $2)`,
				rid, uuid.UUID(catID)); err != nil {
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) scanRequest(ctx context.Context, row interface{ Scan(...any) error }) (*Request, error) {
	var (
		r             Request
		rid, org, cau uuid.UUID
		donorID       *uuid.UUID
	)
	err := row.Scan(&rid, &org, &cau, &donorID, &r.Description, &r.AmountCents,
		(*string)(&r.Urgency), &r.Zipcode, (*string)(&r.MetroRegion), (*string)(&r.County),
		(*string)(&r.Status), &r.DonorNote, &r.DenialReason,
		&r.CreatedAt, &r.UpdatedAt, &r.ClaimedAt, &r.FulfilledAt, &r.DeniedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan request: %w", err)
	}
	r.ID = id.RequestID(rid)
	r.OrgID = id.OrgID(org)
	r.CauseAreaID = id.CategoryID(cau)
	if donorID != nil {
		d := id.AccountID(*donorID)
		r.DonorID = &d
	}
	if err := s.loadTags(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) loadTags(ctx context.Context, r *Request) error {
	load := func(table string) ([]id.CategoryID, error) {
		rows, err := s.q(ctx).QueryContext(ctx,
			`SELECT category_id FROM `+table+` WHERE request_id = $1`, uuid.UUID(r.ID))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", table, err)
		}
		defer rows.Close()
		var out []id.CategoryID
		for rows.Next() {
			var catID uuid.UUID
			if err := rows.Scan(&catID); err != nil {
				return nil, fmt.Errorf("scan %s: %w", table, err)
			}
			out = append(out, id.CategoryID(catID))
		}
		return out, rows.Err()
	}

	identity, err := load("request_identity_categories")
	if err != nil {
		return err
	}
	challenge, err := load("request_challenge_categories")
	if err != nil {
		return err
	}
	r.IdentityCategoryIDs = identity
	r.ChallengeCategoryIDs = challenge
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*Request, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, uuid.UUID(requestID))
	return s.scanRequest(ctx, row)
}

func (s *PostgresStore) UpdateFields(ctx context.Context, r *Request) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE requests SET cause_area_id = $2, description = $3, amount_cents = $4,
			urgency = $5, zipcode = $6, metro_region = $7, county = $8, updated_at = $9
		WHERE id = $1
	`, uuid.UUID(r.ID), uuid.UUID(r.CauseAreaID), r.Description, r.AmountCents,
		string(r.Urgency), r.Zipcode, string(r.MetroRegion), string(r.County), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update request fields: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return s.replaceTags(ctx, r)
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, r *Request, from Status) error {
	var donorID any
	if r.DonorID != nil {
		donorID = uuid.UUID(*r.DonorID)
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE requests SET donor_id = $2, status = $3, donor_note = $4, denial_reason = $5,
			updated_at = $6, claimed_at = $7, fulfilled_at = $8, denied_at = $9
		WHERE id = $1 AND status = $10
	`, uuid.UUID(r.ID), donorID, string(r.Status), r.DonorNote, r.DenialReason,
		r.UpdatedAt, r.ClaimedAt, r.FulfilledAt, r.DeniedAt, string(from))
	if err != nil {
		return fmt.Errorf("swap request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("swap rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Zero rows: either the row is gone or somebody else moved it first.
	var current string
	err = s.q(ctx).QueryRowContext(ctx,
		`SELECT status FROM requests WHERE id = $1`, uuid.UUID(r.ID)).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check request status: %w", err)
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) Delete(ctx context.Context, requestID id.RequestID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM requests WHERE id = $1`, uuid.UUID(requestID))
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		query += ` AND status = ` + arg(string(f.Status))
	}
	if !f.CauseAreaID.IsNil() {
		query += ` AND cause_area_id = ` + arg(uuid.UUID(f.CauseAreaID))
	}
	if !f.OrgID.IsNil() {
		query += ` AND organization_id = ` + arg(uuid.UUID(f.OrgID))
	}
	if !f.DonorID.IsNil() {
		query += ` AND donor_id = ` + arg(uuid.UUID(f.DonorID))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		r, err := s.scanRequest(ctx, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT status, count(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) CreateFulfillment(ctx context.Context, f *FulfillmentRecord) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO fulfillment_records (id, request_id, fulfillment_type, device_condition,
			donor_satisfied, cbo_satisfied, donor_notes, cbo_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.UUID(f.ID), uuid.UUID(f.RequestID), string(f.Type), string(f.DeviceCondition),
		f.DonorSatisfied, f.CBOSatisfied, f.DonorNotes, f.CBONotes, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fulfillment record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindFulfillment(ctx context.Context, requestID id.RequestID) (*FulfillmentRecord, error) {
	var (
		f        FulfillmentRecord
		fid, rid uuid.UUID
	)
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, request_id, fulfillment_type, device_condition, donor_satisfied,
			cbo_satisfied, donor_notes, cbo_notes, created_at
		FROM fulfillment_records WHERE request_id = $1
	`, uuid.UUID(requestID)).Scan(&fid, &rid, (*string)(&f.Type), (*string)(&f.DeviceCondition),
		&f.DonorSatisfied, &f.CBOSatisfied, &f.DonorNotes, &f.CBONotes, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find fulfillment record: %w", err)
	}
	f.ID = id.FulfillmentID(fid)
	f.RequestID = id.RequestID(rid)
	return &f, nil
}
