package profile

import (
	"context"
	"sort"
	"sync"

	id "matchport/pkg/domain"
	"matchport/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	orgs   map[id.OrgID]*Organization
	donors map[id.DonorProfileID]*DonorProfile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		orgs:   make(map[id.OrgID]*Organization),
		donors: make(map[id.DonorProfileID]*DonorProfile),
	}
}

func copyOrg(o *Organization) *Organization {
	cp := *o
	cp.CauseAreaIDs = append([]id.CategoryID(nil), o.CauseAreaIDs...)
	return &cp
}

func copyDonor(d *DonorProfile) *DonorProfile {
	cp := *d
	cp.CauseAreaIDs = append([]id.CategoryID(nil), d.CauseAreaIDs...)
	return &cp
}

func (s *InMemoryStore) UpsertOrganization(_ context.Context, org *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orgs {
		if existing.AccountID == org.AccountID {
			org.ID = existing.ID
			org.CreatedAt = existing.CreatedAt
			s.orgs[existing.ID] = copyOrg(org)
			return nil
		}
	}
	s.orgs[org.ID] = copyOrg(org)
	return nil
}

func (s *InMemoryStore) FindOrganizationByAccount(_ context.Context, accountID id.AccountID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orgs {
		if o.AccountID == accountID {
			return copyOrg(o), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindOrganizationByID(_ context.Context, orgID id.OrgID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyOrg(o), nil
}

func (s *InMemoryStore) ListOrganizations(_ context.Context) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		out = append(out, copyOrg(o))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) UpsertDonorProfile(_ context.Context, dp *DonorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.donors {
		if existing.AccountID == dp.AccountID {
			dp.ID = existing.ID
			dp.CreatedAt = existing.CreatedAt
			s.donors[existing.ID] = copyDonor(dp)
			return nil
		}
	}
	s.donors[dp.ID] = copyDonor(dp)
	return nil
}

func (s *InMemoryStore) FindDonorProfileByAccount(_ context.Context, accountID id.AccountID) (*DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.donors {
		if d.AccountID == accountID {
			return copyDonor(d), nil
		}
	}
	return nil, sentinel.ErrNotFound
}
