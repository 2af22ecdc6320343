package profile

import (
	"context"
	"io"

	id "matchport/pkg/domain"
)

// Store persists profiles. Each account owns at most one profile of its
// role's kind; Upsert replaces the editable fields in place.
type Store interface {
	UpsertOrganization(ctx context.Context, org *Organization) error
	FindOrganizationByAccount(ctx context.Context, accountID id.AccountID) (*Organization, error)
	FindOrganizationByID(ctx context.Context, orgID id.OrgID) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]*Organization, error)

	UpsertDonorProfile(ctx context.Context, dp *DonorProfile) error
	FindDonorProfileByAccount(ctx context.Context, accountID id.AccountID) (*DonorProfile, error)
}

// FileStore is the upload boundary for logos and profile pictures. The core
// validates size and MIME type; storage mechanics live behind this port.
type FileStore interface {
	Save(ctx context.Context, name, contentType string, size int64, r io.Reader) (url string, err error)
}
