package board_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/board"
	"matchport/internal/history"
	"matchport/internal/profile"
	"matchport/internal/request"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
)

type boardFixture struct {
	svc      *board.Service
	requests *request.InMemoryStore
	profiles *profile.InMemoryStore
	ledger   *history.Ledger
	cause    id.CategoryID
	orgID    id.OrgID
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	requests := request.NewInMemoryStore()
	profiles := profile.NewInMemoryStore()
	ledger := history.NewLedger(history.NewInMemoryStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	org := &profile.Organization{
		ID:        id.NewOrgID(),
		AccountID: id.NewAccountID(),
		Name:      "Westside Food Pantry",
		Zipcode:   "66101",
	}
	require.NoError(t, profiles.UpsertOrganization(context.Background(), org))

	return &boardFixture{
		svc:      board.New(requests, profiles, ledger, nil, logger),
		requests: requests,
		profiles: profiles,
		ledger:   ledger,
		cause:    id.NewCategoryID(),
		orgID:    org.ID,
	}
}

func (f *boardFixture) addRequest(t *testing.T, amountCents int64, urgency request.Urgency, createdAt time.Time, description string) *request.Request {
	t.Helper()
	r := &request.Request{
		ID:          id.NewRequestID(),
		OrgID:       f.orgID,
		CauseAreaID: f.cause,
		Description: description,
		AmountCents: amountCents,
		Urgency:     urgency,
		Zipcode:     "66101",
		Status:      request.StatusOpen,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, f.requests.Create(context.Background(), r))
	return r
}

func TestBrowseSorting(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := f.addRequest(t, 10000, request.UrgencyLow, base, "school supplies")
	mid := f.addRequest(t, 30000, request.UrgencyHigh, base.Add(time.Hour), "rental assistance")
	newest := f.addRequest(t, 20000, request.UrgencyMedium, base.Add(2*time.Hour), "bus passes")

	cases := []struct {
		sort board.Sort
		want []id.RequestID
	}{
		{board.SortNewest, []id.RequestID{newest.ID, mid.ID, old.ID}},
		{board.SortOldest, []id.RequestID{old.ID, mid.ID, newest.ID}},
		{board.SortAmountAsc, []id.RequestID{old.ID, newest.ID, mid.ID}},
		{board.SortAmountDesc, []id.RequestID{mid.ID, newest.ID, old.ID}},
		{board.SortUrgency, []id.RequestID{mid.ID, newest.ID, old.ID}},
	}
	for _, tc := range cases {
		t.Run(string(tc.sort), func(t *testing.T) {
			page, err := f.svc.Browse(ctx, board.Query{Sort: tc.sort})
			require.NoError(t, err)
			require.Len(t, page.Cards, 3)
			for i, want := range tc.want {
				assert.Equal(t, want, page.Cards[i].Request.ID)
			}
		})
	}
}

func TestBrowseSearchAndFilter(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)
	base := time.Now().UTC()

	f.addRequest(t, 10000, request.UrgencyLow, base, "school supplies for fall")
	laptop := f.addRequest(t, 20000, request.UrgencyLow, base, "refurbished laptop")

	t.Run("matches description", func(t *testing.T) {
		page, err := f.svc.Browse(ctx, board.Query{Search: "laptop"})
		require.NoError(t, err)
		require.Len(t, page.Cards, 1)
		assert.Equal(t, laptop.ID, page.Cards[0].Request.ID)
	})

	t.Run("matches organization name case-insensitively", func(t *testing.T) {
		page, err := f.svc.Browse(ctx, board.Query{Search: "WESTSIDE"})
		require.NoError(t, err)
		assert.Len(t, page.Cards, 2)
	})

	t.Run("matches zipcode", func(t *testing.T) {
		page, err := f.svc.Browse(ctx, board.Query{Search: "66101"})
		require.NoError(t, err)
		assert.Len(t, page.Cards, 2)
	})

	t.Run("no match yields an empty page", func(t *testing.T) {
		page, err := f.svc.Browse(ctx, board.Query{Search: "piano"})
		require.NoError(t, err)
		assert.Empty(t, page.Cards)
		assert.Equal(t, 0, page.Total)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("cause area filter", func(t *testing.T) {
		page, err := f.svc.Browse(ctx, board.Query{CauseAreaID: id.NewCategoryID()})
		require.NoError(t, err)
		assert.Empty(t, page.Cards)
	})

	t.Run("only open requests by default", func(t *testing.T) {
		claimed := f.addRequest(t, 5000, request.UrgencyLow, base, "winter coats")
		donorID := id.NewAccountID()
		now := time.Now().UTC()
		claimed.Status = request.StatusClaimed
		claimed.DonorID = &donorID
		claimed.ClaimedAt = &now
		require.NoError(t, f.requests.CompareAndSwap(ctx, claimed, request.StatusOpen))

		page, err := f.svc.Browse(ctx, board.Query{})
		require.NoError(t, err)
		for _, card := range page.Cards {
			assert.Equal(t, request.StatusOpen, card.Request.Status)
		}
	})
}

func TestBrowsePagination(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)
	base := time.Now().UTC()
	for i := 0; i < board.PageSize+5; i++ {
		f.addRequest(t, int64(1000*(i+1)), request.UrgencyLow, base.Add(time.Duration(i)*time.Minute), "request")
	}

	first, err := f.svc.Browse(ctx, board.Query{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first.Cards, board.PageSize)
	assert.Equal(t, board.PageSize+5, first.Total)
	assert.Equal(t, 2, first.TotalPages)

	second, err := f.svc.Browse(ctx, board.Query{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Cards, 5)

	beyond, err := f.svc.Browse(ctx, board.Query{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Cards)
}

func TestDetail(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)
	base := time.Now().UTC()

	r := f.addRequest(t, 10000, request.UrgencyHigh, base, "rental assistance")
	_, err := f.ledger.Record(ctx, r.ID, id.NewAccountID(), history.ActionCreated, "Request created")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		f.addRequest(t, 5000, request.UrgencyLow, base.Add(time.Duration(i)*time.Minute), "related")
	}

	detail, err := f.svc.Detail(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, detail.Request.ID)
	assert.Equal(t, "Westside Food Pantry", detail.Organization.Name)
	require.Len(t, detail.Timeline, 1)
	assert.Len(t, detail.Related, 3)
	for _, card := range detail.Related {
		assert.NotEqual(t, r.ID, card.Request.ID)
	}

	_, err = f.svc.Detail(ctx, id.NewRequestID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)
	base := time.Now().UTC()

	f.addRequest(t, 1000, request.UrgencyLow, base, "open one")
	f.addRequest(t, 2000, request.UrgencyLow, base, "open two")
	claimed := f.addRequest(t, 3000, request.UrgencyLow, base, "claimed one")
	donorID := id.NewAccountID()
	claimed.Status = request.StatusClaimed
	claimed.DonorID = &donorID
	require.NoError(t, f.requests.CompareAndSwap(ctx, claimed, request.StatusOpen))

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Open)
	assert.Equal(t, 1, d.Claimed)
	assert.Equal(t, 0, d.Fulfilled)
	assert.Equal(t, 3, d.Total)
}

// memoryCache is a test double for the Redis page cache.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = value
}

func (c *memoryCache) Invalidate(_ context.Context, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}

func TestBrowseCaching(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)
	cache := &memoryCache{}
	svc := board.New(f.requests, f.profiles, f.ledger, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f.addRequest(t, 10000, request.UrgencyLow, time.Now().UTC(), "school supplies")

	first, err := svc.Browse(ctx, board.Query{})
	require.NoError(t, err)
	require.Len(t, first.Cards, 1)
	assert.Zero(t, cache.hits)

	second, err := svc.Browse(ctx, board.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Total, second.Total)

	svc.InvalidatePages(ctx)
	_, err = svc.Browse(ctx, board.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}
