package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"matchport/internal/account"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
	"matchport/pkg/requestcontext"
)

// InMemory is the development and unit-test implementation of Store.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*account.Account
	events   map[id.AccountID][]*account.VettingEvent
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[id.AccountID]*account.Account),
		events:   make(map[id.AccountID][]*account.VettingEvent),
	}
}

func (s *InMemory) Create(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, a.Email) || strings.EqualFold(existing.Username, a.Username) {
			return sentinel.ErrConflict
		}
	}
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) UpdateVetting(ctx context.Context, accountID id.AccountID, vetted bool, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	a.IsVetted = vetted
	a.VettingNote = note
	a.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *InMemory) AppendVettingEvent(_ context.Context, ev *account.VettingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ev
	s.events[ev.AccountID] = append(s.events[ev.AccountID], &cp)
	return nil
}

func (s *InMemory) ListVettingEvents(_ context.Context, accountID id.AccountID) ([]*account.VettingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[accountID]
	out := make([]*account.VettingEvent, 0, len(events))
	for _, ev := range events {
		cp := *ev
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *InMemory) ListUnvettedCBOs(_ context.Context) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*account.Account
	for _, a := range s.accounts {
		if a.Role == account.RoleCBO && !a.IsVetted {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
