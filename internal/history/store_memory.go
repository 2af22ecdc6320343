package history

import (
	"context"
	"sort"
	"sync"

	id "matchport/pkg/domain"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.RequestID][]*Entry
	// seq breaks ties between entries recorded within one clock tick so
	// ordering stays strict.
	seq  map[id.HistoryID]uint64
	next uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[id.RequestID][]*Entry),
		seq:     make(map[id.HistoryID]uint64),
	}
}

func (s *InMemoryStore) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.next++
	s.seq[e.ID] = s.next
	s.entries[e.RequestID] = append(s.entries[e.RequestID], &cp)
	return nil
}

func (s *InMemoryStore) ListByRequest(_ context.Context, requestID id.RequestID) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.entries[requestID]
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return s.seq[out[i].ID] < s.seq[out[j].ID]
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
