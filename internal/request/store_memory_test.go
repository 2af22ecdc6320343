package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/request"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

func openRow(orgID id.OrgID) *request.Request {
	now := time.Now().UTC()
	return &request.Request{
		ID:          id.NewRequestID(),
		OrgID:       orgID,
		CauseAreaID: id.NewCategoryID(),
		Description: "Laptops for after-school program",
		AmountCents: 50000,
		Urgency:     request.UrgencyHigh,
		Zipcode:     "64110",
		Status:      request.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInMemoryStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := request.NewInMemoryStore()
	r := openRow(id.NewOrgID())

	require.NoError(t, store.Create(ctx, r))
	assert.ErrorIs(t, store.Create(ctx, r), sentinel.ErrConflict)

	got, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	// The store hands out copies; mutating a result must not leak back.
	got.Description = "changed"
	again, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptops for after-school program", again.Description)

	_, err = store.FindByID(ctx, id.NewRequestID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := request.NewInMemoryStore()
	r := openRow(id.NewOrgID())
	require.NoError(t, store.Create(ctx, r))

	donorID := id.NewAccountID()
	now := time.Now().UTC()
	r.Status = request.StatusClaimed
	r.DonorID = &donorID
	r.ClaimedAt = &now
	require.NoError(t, store.CompareAndSwap(ctx, r, request.StatusOpen))

	err := store.CompareAndSwap(ctx, r, request.StatusOpen)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	got, err := store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusClaimed, got.Status)
}

func TestInMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	store := request.NewInMemoryStore()

	orgA, orgB := id.NewOrgID(), id.NewOrgID()
	a := openRow(orgA)
	b := openRow(orgB)
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	donorID := id.NewAccountID()
	now := time.Now().UTC()
	b.Status = request.StatusClaimed
	b.DonorID = &donorID
	b.ClaimedAt = &now
	require.NoError(t, store.CompareAndSwap(ctx, b, request.StatusOpen))

	all, err := store.List(ctx, request.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := store.List(ctx, request.Filter{Status: request.StatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.ID, open[0].ID)

	byOrg, err := store.List(ctx, request.Filter{OrgID: orgB})
	require.NoError(t, err)
	require.Len(t, byOrg, 1)
	assert.Equal(t, b.ID, byOrg[0].ID)

	byDonor, err := store.List(ctx, request.Filter{DonorID: donorID})
	require.NoError(t, err)
	require.Len(t, byDonor, 1)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[request.StatusOpen])
	assert.Equal(t, 1, counts[request.StatusClaimed])
}

func TestInMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := request.NewInMemoryStore()
	r := openRow(id.NewOrgID())
	require.NoError(t, store.Create(ctx, r))

	require.NoError(t, store.Delete(ctx, r.ID))
	_, err := store.FindByID(ctx, r.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, r.ID), sentinel.ErrNotFound)
}
