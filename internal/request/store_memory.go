package request

import (
	"context"
	"sort"
	"sync"
	"time"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu           sync.RWMutex
	rows         map[id.RequestID]*Request
	fulfillments map[id.RequestID]*FulfillmentRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rows:         make(map[id.RequestID]*Request),
		fulfillments: make(map[id.RequestID]*FulfillmentRecord),
	}
}

func copyRequest(r *Request) *Request {
	cp := *r
	cp.IdentityCategoryIDs = append([]id.CategoryID(nil), r.IdentityCategoryIDs...)
	cp.ChallengeCategoryIDs = append([]id.CategoryID(nil), r.ChallengeCategoryIDs...)
	if r.DonorID != nil {
		donor := *r.DonorID
		cp.DonorID = &donor
	}
	cp.ClaimedAt = copyTime(r.ClaimedAt)
	cp.FulfilledAt = copyTime(r.FulfilledAt)
	cp.DeniedAt = copyTime(r.DeniedAt)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[r.ID]; exists {
		return sentinel.ErrConflict
	}
	s.rows[r.ID] = copyRequest(r)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyRequest(r), nil
}

func (s *InMemoryStore) UpdateFields(_ context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cur.CauseAreaID = r.CauseAreaID
	cur.Description = r.Description
	cur.AmountCents = r.AmountCents
	cur.Urgency = r.Urgency
	cur.Zipcode = r.Zipcode
	cur.MetroRegion = r.MetroRegion
	cur.County = r.County
	cur.IdentityCategoryIDs = append([]id.CategoryID(nil), r.IdentityCategoryIDs...)
	cur.ChallengeCategoryIDs = append([]id.CategoryID(nil), r.ChallengeCategoryIDs...)
	cur.UpdatedAt = r.UpdatedAt
	return nil
}

func (s *InMemoryStore) CompareAndSwap(_ context.Context, r *Request, from Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Status != from {
		return sentinel.ErrInvalidState
	}
	s.rows[r.ID] = copyRequest(r)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[requestID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rows, requestID)
	delete(s.fulfillments, requestID)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, f Filter) ([]*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Request
	for _, r := range s.rows {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if !f.CauseAreaID.IsNil() && r.CauseAreaID != f.CauseAreaID {
			continue
		}
		if !f.OrgID.IsNil() && r.OrgID != f.OrgID {
			continue
		}
		if !f.DonorID.IsNil() && (r.DonorID == nil || *r.DonorID != f.DonorID) {
			continue
		}
		out = append(out, copyRequest(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context) (map[Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Status]int)
	for _, r := range s.rows {
		counts[r.Status]++
	}
	return counts, nil
}

func (s *InMemoryStore) CreateFulfillment(_ context.Context, f *FulfillmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fulfillments[f.RequestID]; exists {
		return sentinel.ErrConflict
	}
	cp := *f
	s.fulfillments[f.RequestID] = &cp
	return nil
}

func (s *InMemoryStore) FindFulfillment(_ context.Context, requestID id.RequestID) (*FulfillmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fulfillments[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *f
	return &cp, nil
}
