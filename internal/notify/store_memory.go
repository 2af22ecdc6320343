package notify

import (
	"context"
	"sort"
	"sync"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	rows map[id.NotificationID]*Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[id.NotificationID]*Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.rows[n.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListByRecipient(_ context.Context, recipient id.AccountID) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.rows {
		if n.RecipientID == recipient {
			cp := *n
			out = append(out, &cp)
		}
	}
	// Newest first, matching the board-facing listing order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, recipient id.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.rows {
		if n.RecipientID == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, recipient id.AccountID, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[notificationID]
	if !ok || n.RecipientID != recipient {
		return sentinel.ErrNotFound
	}
	n.Read = true
	return nil
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, recipient id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.RecipientID == recipient {
			n.Read = true
		}
	}
	return nil
}
