package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	rows map[id.CategoryID]*Category
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[id.CategoryID]*Category)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.Kind == c.Kind && strings.EqualFold(existing.Name, c.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.rows[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, categoryID id.CategoryID) (*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rows[categoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) ListActive(_ context.Context, kind Kind) ([]*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Category
	for _, c := range s.rows {
		if c.Kind == kind && c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
