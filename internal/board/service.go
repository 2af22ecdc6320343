// Package board is the donor-facing read model: browse, search, sort, and
// paginate requests, plus the request detail view and the admin dashboard
// counts. It never mutates lifecycle state.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"matchport/internal/history"
	"matchport/internal/profile"
	"matchport/internal/request"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/sentinel"
)

// OrgStore resolves organizations for board cards.
type OrgStore interface {
	FindOrganizationByID(ctx context.Context, orgID id.OrgID) (*profile.Organization, error)
}

// Sort orders board results.
type Sort string

const (
	SortNewest     Sort = "newest"
	SortOldest     Sort = "oldest"
	SortAmountAsc  Sort = "amount_asc"
	SortAmountDesc Sort = "amount_desc"
	SortUrgency    Sort = "urgency"
)

func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortAmountAsc, SortAmountDesc, SortUrgency:
		return Sort(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown sort: "+s)
	}
}

// PageSize is the fixed number of cards per board page.
const PageSize = 12

// Query is one board request.
type Query struct {
	Search      string
	Status      request.Status
	CauseAreaID id.CategoryID
	Sort        Sort
	Page        int
}

// Card pairs a request with the organization that posted it.
type Card struct {
	Request      *request.Request      `json:"request"`
	Organization *profile.Organization `json:"organization"`
}

// Page is one page of board results.
type Page struct {
	Cards      []*Card `json:"cards"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

// Detail is the full request view: the request, its organization, its
// history timeline, and a few related open requests in the same cause area.
type Detail struct {
	Request      *request.Request      `json:"request"`
	Organization *profile.Organization `json:"organization"`
	Timeline     []*history.Entry      `json:"timeline"`
	Related      []*Card               `json:"related"`
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	Open      int `json:"open"`
	Claimed   int `json:"claimed"`
	Fulfilled int `json:"fulfilled"`
	Denied    int `json:"denied"`
	Total     int `json:"total"`
}

const relatedLimit = 3

type Service struct {
	requests request.Store
	orgs     OrgStore
	ledger   *history.Ledger
	cache    Cache
	logger   *slog.Logger
}

// New builds the board service. cache may be nil; the board then recomputes
// every page.
func New(requests request.Store, orgs OrgStore, ledger *history.Ledger, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		requests: requests,
		orgs:     orgs,
		ledger:   ledger,
		cache:    cache,
		logger:   logger,
	}
}

// Browse returns one page of the board. Pages are cached briefly; a miss
// loads the candidate set, applies the text filter in memory, sorts, and
// slices out the page. The in-memory read model keeps search and sort
// semantics identical across storage backends.
func (s *Service) Browse(ctx context.Context, q Query) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Status == "" {
		q.Status = request.StatusOpen
	}

	key := q.cacheKey()
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var page Page
			if err := json.Unmarshal(raw, &page); err == nil {
				return &page, nil
			}
			s.logger.WarnContext(ctx, "discarding unreadable cached board page", "key", key)
		}
	}

	list, err := s.requests.List(ctx, request.Filter{
		Status:      q.Status,
		CauseAreaID: q.CauseAreaID,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}

	cards := make([]*Card, 0, len(list))
	orgsByID := make(map[id.OrgID]*profile.Organization)
	for _, r := range list {
		org, ok := orgsByID[r.OrgID]
		if !ok {
			org, err = s.orgs.FindOrganizationByID(ctx, r.OrgID)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
			}
			orgsByID[r.OrgID] = org
		}
		if !matchesSearch(r, org, q.Search) {
			continue
		}
		cards = append(cards, &Card{Request: r, Organization: org})
	}

	sortCards(cards, q.Sort)

	total := len(cards)
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	start := (q.Page - 1) * PageSize
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	page := &Page{
		Cards:      cards[start:end],
		Total:      total,
		Page:       q.Page,
		TotalPages: totalPages,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(page); err == nil {
			s.cache.Set(ctx, key, raw, 0)
		}
	}
	return page, nil
}

// Detail returns the full view of one request, including its timeline and
// up to three related open requests in the same cause area.
func (s *Service) Detail(ctx context.Context, requestID id.RequestID) (*Detail, error) {
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	org, err := s.orgs.FindOrganizationByID(ctx, r.OrgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	timeline, err := s.ledger.Timeline(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	related, err := s.related(ctx, r)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Request:      r,
		Organization: org,
		Timeline:     timeline,
		Related:      related,
	}, nil
}

func (s *Service) related(ctx context.Context, r *request.Request) ([]*Card, error) {
	list, err := s.requests.List(ctx, request.Filter{
		Status:      request.StatusOpen,
		CauseAreaID: r.CauseAreaID,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list related requests")
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	related := make([]*Card, 0, relatedLimit)
	for _, candidate := range list {
		if candidate.ID == r.ID {
			continue
		}
		org, err := s.orgs.FindOrganizationByID(ctx, candidate.OrgID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
		}
		related = append(related, &Card{Request: candidate, Organization: org})
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

// Dashboard returns request counts by status.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count requests")
	}
	d := &Dashboard{
		Open:      counts[request.StatusOpen],
		Claimed:   counts[request.StatusClaimed],
		Fulfilled: counts[request.StatusFulfilled],
		Denied:    counts[request.StatusDenied],
	}
	d.Total = d.Open + d.Claimed + d.Fulfilled + d.Denied
	return d, nil
}

// InvalidatePages drops all cached board pages. Called after admin actions
// whose effect must be visible immediately.
func (s *Service) InvalidatePages(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, "")
	}
}

func (q Query) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		strings.ToLower(strings.TrimSpace(q.Search)), q.Status, q.CauseAreaID, q.Sort, q.Page)
}

func matchesSearch(r *request.Request, org *profile.Organization, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, hay := range []string{org.Name, r.Description, r.Zipcode, org.Zipcode} {
		if strings.Contains(strings.ToLower(hay), search) {
			return true
		}
	}
	return false
}

func sortCards(cards []*Card, by Sort) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i].Request, cards[j].Request
		switch by {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortAmountAsc:
			return a.AmountCents < b.AmountCents
		case SortAmountDesc:
			return a.AmountCents > b.AmountCents
		case SortUrgency:
			if a.Urgency.Rank() != b.Urgency.Rank() {
				return a.Urgency.Rank() > b.Urgency.Rank()
			}
			return a.CreatedAt.After(b.CreatedAt)
		default: // SortNewest
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}
