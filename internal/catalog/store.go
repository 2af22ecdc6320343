package catalog

import (
	"context"

	id "matchport/pkg/domain"
)

// Store persists the reference lists.
type Store interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, categoryID id.CategoryID) (*Category, error)
	ListActive(ctx context.Context, kind Kind) ([]*Category, error)
}
