package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

// Kind maps to a table per list, mirroring the relational schema the
// request tag tables reference.
var kindTables = map[Kind]string{
	KindCauseArea:         "cause_areas",
	KindIdentityCategory:  "identity_categories",
	KindChallengeCategory: "challenge_categories",
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *Category) error {
	table, ok := kindTables[c.Kind]
	if !ok {
		return fmt.Errorf("unknown category kind %q", c.Kind)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name, description, is_active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(c.ID), c.Name, c.Description, c.Active, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, categoryID id.CategoryID) (*Category, error) {
	// The ID is unique across tables, so probe each list.
	for kind, table := range kindTables {
		var c Category
		var cid uuid.UUID
		err := s.db.QueryRowContext(ctx,
			`SELECT id, name, description, is_active, created_at FROM `+table+` WHERE id = $1`,
			uuid.UUID(categoryID)).Scan(&cid, &c.Name, &c.Description, &c.Active, &c.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		c.ID = id.CategoryID(cid)
		c.Kind = kind
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *PostgresStore) ListActive(ctx context.Context, kind Kind) ([]*Category, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown category kind %q", kind)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, is_active, created_at FROM `+table+` WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var c Category
		var cid uuid.UUID
		if err := rows.Scan(&cid, &c.Name, &c.Description, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID = id.CategoryID(cid)
		c.Kind = kind
		out = append(out, &c)
	}
	return out, rows.Err()
}
