//go:build integration

package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/account"
	accountstore "matchport/internal/account/store"
	"matchport/internal/catalog"
	"matchport/internal/profile"
	"matchport/internal/request"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
	"matchport/pkg/testutil/containers"
)

type pgFixture struct {
	store       *request.PostgresStore
	orgID       id.OrgID
	causeAreaID id.CategoryID
	donorID     id.AccountID
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)

	now := time.Now().UTC().Truncate(time.Microsecond)

	accounts := accountstore.NewPostgres(pg.DB)
	cbo := &account.Account{
		ID:        id.NewAccountID(),
		Email:     "cbo@example.org",
		Username:  "cbo",
		Role:      account.RoleCBO,
		IsVetted:  true,
		CreatedAt: now,
	}
	require.NoError(t, accounts.Create(ctx, cbo))
	donor := &account.Account{
		ID:        id.NewAccountID(),
		Email:     "donor@example.org",
		Username:  "donor",
		Role:      account.RoleDonor,
		IsVetted:  true,
		CreatedAt: now,
	}
	require.NoError(t, accounts.Create(ctx, donor))

	orgs := profile.NewPostgresStore(pg.DB)
	org := &profile.Organization{
		ID:        id.NewOrgID(),
		AccountID: cbo.ID,
		Name:      "Northside Community Center",
		Mission:   "Bridging the digital divide",
		Email:     "org@example.org",
		Zipcode:   "64110",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, orgs.UpsertOrganization(ctx, org))

	catalogs := catalog.NewPostgresStore(pg.DB)
	cause := &catalog.Category{
		ID:        id.NewCategoryID(),
		Kind:      catalog.KindCauseArea,
		Name:      "Digital Inclusion",
		Active:    true,
		CreatedAt: now,
	}
	require.NoError(t, catalogs.Create(ctx, cause))

	return &pgFixture{
		store:       request.NewPostgresStore(pg.DB),
		orgID:       org.ID,
		causeAreaID: cause.ID,
		donorID:     donor.ID,
	}
}

func (f *pgFixture) newRequest(t *testing.T) *request.Request {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	r := &request.Request{
		ID:          id.NewRequestID(),
		OrgID:       f.orgID,
		CauseAreaID: f.causeAreaID,
		Description: "Laptops for after-school program",
		AmountCents: 52500,
		Urgency:     request.UrgencyHigh,
		Zipcode:     "64110",
		Status:      request.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.store.Create(context.Background(), r))
	return r
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	r := f.newRequest(t)

	got, err := f.store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.OrgID, got.OrgID)
	assert.Equal(t, request.StatusOpen, got.Status)
	assert.Equal(t, int64(52500), got.AmountCents)
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = f.store.FindByID(ctx, id.NewRequestID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStoreCompareAndSwap(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	r := f.newRequest(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	r.Status = request.StatusClaimed
	r.DonorID = &f.donorID
	r.ClaimedAt = &now
	r.UpdatedAt = now
	require.NoError(t, f.store.CompareAndSwap(ctx, r, request.StatusOpen))

	got, err := f.store.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusClaimed, got.Status)
	require.NotNil(t, got.DonorID)
	assert.Equal(t, f.donorID, *got.DonorID)

	// A second swap expecting "open" loses: the row moved on.
	err = f.store.CompareAndSwap(ctx, r, request.StatusOpen)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestPostgresStoreListAndCount(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	open := f.newRequest(t)
	claimed := f.newRequest(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	claimed.Status = request.StatusClaimed
	claimed.DonorID = &f.donorID
	claimed.ClaimedAt = &now
	claimed.UpdatedAt = now
	require.NoError(t, f.store.CompareAndSwap(ctx, claimed, request.StatusOpen))

	openOnly, err := f.store.List(ctx, request.Filter{Status: request.StatusOpen})
	require.NoError(t, err)
	require.Len(t, openOnly, 1)
	assert.Equal(t, open.ID, openOnly[0].ID)

	byDonor, err := f.store.List(ctx, request.Filter{DonorID: f.donorID})
	require.NoError(t, err)
	require.Len(t, byDonor, 1)
	assert.Equal(t, claimed.ID, byDonor[0].ID)

	counts, err := f.store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[request.StatusOpen])
	assert.Equal(t, 1, counts[request.StatusClaimed])
}

func TestPostgresStoreFulfillment(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	r := f.newRequest(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := &request.FulfillmentRecord{
		ID:             id.NewFulfillmentID(),
		RequestID:      r.ID,
		Type:           request.FulfillmentMonetary,
		DonorNotes:     "Sent via check",
		DonorSatisfied: true,
		CBOSatisfied:   true,
		CreatedAt:      now,
	}
	require.NoError(t, f.store.CreateFulfillment(ctx, rec))

	got, err := f.store.FindFulfillment(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, request.FulfillmentMonetary, got.Type)

	_, err = f.store.FindFulfillment(ctx, id.NewRequestID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
