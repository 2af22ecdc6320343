package profile

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

func (s *PostgresStore) UpsertOrganization(ctx context.Context, org *Organization) error {
	q := s.q(ctx)
	query := `
		INSERT INTO organizations (id, account_id, name, website, mission, email, phone, address, zipcode, ein, logo_emoji, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (account_id) DO UPDATE SET
			name = EXCLUDED.name, website = EXCLUDED.website, mission = EXCLUDED.mission,
			email = EXCLUDED.email, phone = EXCLUDED.phone, address = EXCLUDED.address,
			zipcode = EXCLUDED.zipcode, ein = EXCLUDED.ein, logo_emoji = EXCLUDED.logo_emoji,
			logo_url = EXCLUDED.logo_url, updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	var orgID uuid.UUID
	err := q.QueryRowContext(ctx, query,
		uuid.UUID(org.ID), uuid.UUID(org.AccountID), org.Name, org.Website, org.Mission,
		org.Email, org.Phone, org.Address, org.Zipcode, org.EIN, org.LogoEmoji, org.LogoURL,
		org.CreatedAt, org.UpdatedAt,
	).Scan(&orgID)
	if err != nil {
		return fmt.Errorf("upsert organization: %w", err)
	}
	org.ID = id.OrgID(orgID)

	if _, err := q.ExecContext(ctx, `DELETE FROM organization_cause_areas WHERE organization_id = $1`, orgID); err != nil {
		return fmt.Errorf("clear organization cause areas: %w", err)
	}
	for _, caID := range org.CauseAreaIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO organization_cause_areas (organization_id, cause_area_id) VALUES ($1, $2)`,
			orgID, uuid.UUID(caID)); err != nil {
			return fmt.Errorf("insert organization cause area: %w", err)
		}
	}
	return nil
}

const orgColumns = `id, account_id, name, website, mission, email, phone, address, zipcode, ein, logo_emoji, logo_url, created_at, updated_at`

func (s *PostgresStore) scanOrganization(ctx context.Context, row interface{ Scan(...any) error }) (*Organization, error) {
	var (
		o         Organization
		oid, acct uuid.UUID
	)
	err := row.Scan(&oid, &acct, &o.Name, &o.Website, &o.Mission, &o.Email, &o.Phone,
		&o.Address, &o.Zipcode, &o.EIN, &o.LogoEmoji, &o.LogoURL, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	o.ID = id.OrgID(oid)
	o.AccountID = id.AccountID(acct)

	causeIDs, err := s.loadCauseAreas(ctx, "organization_cause_areas", "organization_id", oid)
	if err != nil {
		return nil, err
	}
	o.CauseAreaIDs = causeIDs
	return &o, nil
}

func (s *PostgresStore) loadCauseAreas(ctx context.Context, table, fk string, owner uuid.UUID) ([]id.CategoryID, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT cause_area_id FROM `+table+` WHERE `+fk+` = $1`, owner)
	if err != nil {
		return nil, fmt.Errorf("load cause areas: %w", err)
	}
	defer rows.Close()

	var out []id.CategoryID
	for rows.Next() {
		var caID uuid.UUID
		if err := rows.Scan(&caID); err != nil {
			return nil, fmt.Errorf("scan cause area: %w", err)
		}
		out = append(out, id.CategoryID(caID))
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindOrganizationByAccount(ctx context.Context, accountID id.AccountID) (*Organization, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE account_id = $1`, uuid.UUID(accountID))
	return s.scanOrganization(ctx, row)
}

func (s *PostgresStore) FindOrganizationByID(ctx context.Context, orgID id.OrgID) (*Organization, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, uuid.UUID(orgID))
	return s.scanOrganization(ctx, row)
}

func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]*Organization, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+orgColumns+` FROM organizations ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []*Organization
	for rows.Next() {
		o, err := s.scanOrganization(ctx, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertDonorProfile(ctx context.Context, dp *DonorProfile) error {
	q := s.q(ctx)
	query := `
		INSERT INTO donor_profiles (id, account_id, name, email, phone, max_per_request_cents, service_area_zipcode, picture_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (account_id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
			max_per_request_cents = EXCLUDED.max_per_request_cents,
			service_area_zipcode = EXCLUDED.service_area_zipcode,
			picture_url = EXCLUDED.picture_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	var dpID uuid.UUID
	err := q.QueryRowContext(ctx, query,
		uuid.UUID(dp.ID), uuid.UUID(dp.AccountID), dp.Name, dp.Email, dp.Phone,
		dp.MaxPerRequestCents, dp.ServiceAreaZipcode, dp.PictureURL, dp.CreatedAt, dp.UpdatedAt,
	).Scan(&dpID)
	if err != nil {
		return fmt.Errorf("upsert donor profile: %w", err)
	}
	dp.ID = id.DonorProfileID(dpID)

	if _, err := q.ExecContext(ctx, `DELETE FROM donor_profile_cause_areas WHERE donor_profile_id = $1`, dpID); err != nil {
		return fmt.Errorf("clear donor cause areas: %w", err)
	}
	for _, caID := range dp.CauseAreaIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO donor_profile_cause_areas (donor_profile_id, cause_area_id) VALUES ($1, $2)`,
			dpID, uuid.UUID(caID)); err != nil {
			return fmt.Errorf("insert donor cause area: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindDonorProfileByAccount(ctx context.Context, accountID id.AccountID) (*DonorProfile, error) {
	var (
		d         DonorProfile
		did, acct uuid.UUID
	)
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, account_id, name, email, phone, max_per_request_cents, service_area_zipcode, picture_url, created_at, updated_at
		FROM donor_profiles WHERE account_id = $1
	`, uuid.UUID(accountID)).Scan(&did, &acct, &d.Name, &d.Email, &d.Phone,
		&d.MaxPerRequestCents, &d.ServiceAreaZipcode, &d.PictureURL, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find donor profile: %w", err)
	}
	d.ID = id.DonorProfileID(did)
	d.AccountID = id.AccountID(acct)

	causeIDs, err := s.loadCauseAreas(ctx, "donor_profile_cause_areas", "donor_profile_id", did)
	if err != nil {
		return nil, err
	}
	d.CauseAreaIDs = causeIDs
	return &d, nil
}
