package store

import (
	"context"

	"matchport/internal/account"
	id "matchport/pkg/domain"
)

// Store persists accounts and the vetting ledger. Implementations return
// sentinel.ErrNotFound for unknown IDs and sentinel.ErrConflict when the
// email or username is already taken.
type Store interface {
	Create(ctx context.Context, a *account.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*account.Account, error)
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	// UpdateVetting sets the vetting flag and overwrites the note.
	UpdateVetting(ctx context.Context, accountID id.AccountID, vetted bool, note string) error
	AppendVettingEvent(ctx context.Context, ev *account.VettingEvent) error
	ListVettingEvents(ctx context.Context, accountID id.AccountID) ([]*account.VettingEvent, error)
	// ListUnvettedCBOs feeds the admin review queue.
	ListUnvettedCBOs(ctx context.Context) ([]*account.Account, error)
}
