package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/account"
	"matchport/internal/account/store"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

func newAccount(email, username string, role account.Role) *account.Account {
	return &account.Account{
		ID:        id.NewAccountID(),
		Email:     email,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

func TestInMemoryUniqueness(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemory()

	require.NoError(t, s.Create(ctx, newAccount("a@example.org", "alice", account.RoleDonor)))

	// Email and username collisions are case-insensitive.
	err := s.Create(ctx, newAccount("A@Example.org", "someone-else", account.RoleDonor))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	err = s.Create(ctx, newAccount("b@example.org", "ALICE", account.RoleDonor))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryFindByEmail(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemory()
	a := newAccount("cbo@example.org", "cbo", account.RoleCBO)
	require.NoError(t, s.Create(ctx, a))

	got, err := s.FindByEmail(ctx, "CBO@example.org")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.FindByEmail(ctx, "nobody@example.org")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryVettingLedger(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemory()
	cbo := newAccount("cbo@example.org", "cbo", account.RoleCBO)
	admin := newAccount("admin@example.org", "admin", account.RoleAdmin)
	require.NoError(t, s.Create(ctx, cbo))
	require.NoError(t, s.Create(ctx, admin))

	queue, err := s.ListUnvettedCBOs(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, cbo.ID, queue[0].ID)

	require.NoError(t, s.UpdateVetting(ctx, cbo.ID, true, "501c3 verified"))
	require.NoError(t, s.AppendVettingEvent(ctx, &account.VettingEvent{
		ID:        id.NewHistoryID(),
		AccountID: cbo.ID,
		AdminID:   admin.ID,
		Vetted:    true,
		Note:      "501c3 verified",
		Timestamp: time.Now().UTC(),
	}))

	got, err := s.FindByID(ctx, cbo.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVetted)
	assert.Equal(t, "501c3 verified", got.VettingNote)

	events, err := s.ListVettingEvents(ctx, cbo.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, admin.ID, events[0].AdminID)

	queue, err = s.ListUnvettedCBOs(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
}
