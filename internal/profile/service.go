package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"matchport/internal/account"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/sentinel"
	"matchport/pkg/platform/tx"
	"matchport/pkg/requestcontext"
)

// AccountStore authorizes profile edits by role.
type AccountStore interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*account.Account, error)
}

// Service manages organization and donor profiles.
type Service struct {
	store    Store
	accounts AccountStore
	files    FileStore
	tx       tx.Runner
	logger   *slog.Logger
}

func NewService(store Store, accounts AccountStore, files FileStore, txRunner tx.Runner, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		files:    files,
		tx:       txRunner,
		logger:   logger,
	}
}

func (s *Service) requireRole(ctx context.Context, actorID id.AccountID, role account.Role) (*account.Account, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	a, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if a.Role != role {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "you do not have permission to perform this action")
	}
	return a, nil
}

// OrgInput carries the editable fields of an organization profile.
type OrgInput struct {
	Name      string
	Website   string
	Mission   string
	Email     string
	Phone     string
	Address   string
	Zipcode   string
	EIN       string
	LogoEmoji string
	CauseIDs  []id.CategoryID
}

// UpsertOrganization creates or replaces the caller's organization profile.
// The account keeps one profile; repeated saves edit it in place.
func (s *Service) UpsertOrganization(ctx context.Context, actorID id.AccountID, in OrgInput) (*Organization, error) {
	if _, err := s.requireRole(ctx, actorID, account.RoleCBO); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	org := &Organization{
		ID:           id.NewOrgID(),
		AccountID:    actorID,
		Name:         strings.TrimSpace(in.Name),
		Website:      strings.TrimSpace(in.Website),
		Mission:      in.Mission,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      in.Address,
		Zipcode:      strings.TrimSpace(in.Zipcode),
		EIN:          strings.TrimSpace(in.EIN),
		LogoEmoji:    in.LogoEmoji,
		CauseAreaIDs: in.CauseIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := org.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.store.FindOrganizationByAccount(txCtx, actorID); err == nil {
			org.ID = existing.ID
			org.LogoURL = existing.LogoURL
			org.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
		}
		if err := s.store.UpsertOrganization(txCtx, org); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save organization")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Organization returns the caller's organization profile.
func (s *Service) Organization(ctx context.Context, accountID id.AccountID) (*Organization, error) {
	org, err := s.store.FindOrganizationByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}

// Organizations lists all organization profiles, ordered by name.
func (s *Service) Organizations(ctx context.Context) ([]*Organization, error) {
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

const maxImageBytes = 5 << 20 // 5 MB

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

func validateImage(contentType string, size int64) error {
	if size <= 0 || size > maxImageBytes {
		return dErrors.New(dErrors.CodeValidation, "image must be between 1 byte and 5 MB")
	}
	if !allowedImageTypes[contentType] {
		return dErrors.New(dErrors.CodeValidation, "image must be a PNG, JPEG, or GIF")
	}
	return nil
}

// UploadLogo stores a logo image and records its URL on the caller's
// organization profile.
func (s *Service) UploadLogo(ctx context.Context, actorID id.AccountID, name, contentType string, size int64, r io.Reader) (*Organization, error) {
	if _, err := s.requireRole(ctx, actorID, account.RoleCBO); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "logo uploads are not enabled")
	}
	if err := validateImage(contentType, size); err != nil {
		return nil, err
	}

	url, err := s.files.Save(ctx, name, contentType, size, io.LimitReader(r, maxImageBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store logo")
	}

	var org *Organization
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		org, err = s.store.FindOrganizationByAccount(txCtx, actorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "organization profile not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
		}
		org.LogoURL = url
		org.UpdatedAt = requestcontext.Now(txCtx)
		if err := s.store.UpsertOrganization(txCtx, org); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save organization")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// UploadPicture stores a profile picture and records its URL on the
// caller's donor profile.
func (s *Service) UploadPicture(ctx context.Context, actorID id.AccountID, name, contentType string, size int64, r io.Reader) (*DonorProfile, error) {
	if _, err := s.requireRole(ctx, actorID, account.RoleDonor); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "picture uploads are not enabled")
	}
	if err := validateImage(contentType, size); err != nil {
		return nil, err
	}

	url, err := s.files.Save(ctx, name, contentType, size, io.LimitReader(r, maxImageBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store picture")
	}

	var dp *DonorProfile
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dp, err = s.store.FindDonorProfileByAccount(txCtx, actorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "donor profile not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
		}
		dp.PictureURL = url
		dp.UpdatedAt = requestcontext.Now(txCtx)
		if err := s.store.UpsertDonorProfile(txCtx, dp); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save donor profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dp, nil
}

// DonorInput carries the editable fields of a donor profile.
type DonorInput struct {
	Name               string
	Email              string
	Phone              string
	MaxPerRequestCents int64
	ServiceAreaZipcode string
	CauseIDs           []id.CategoryID
}

// UpsertDonorProfile creates or replaces the caller's donor profile.
func (s *Service) UpsertDonorProfile(ctx context.Context, actorID id.AccountID, in DonorInput) (*DonorProfile, error) {
	if _, err := s.requireRole(ctx, actorID, account.RoleDonor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	dp := &DonorProfile{
		ID:                 id.NewDonorProfileID(),
		AccountID:          actorID,
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:              strings.TrimSpace(in.Phone),
		MaxPerRequestCents: in.MaxPerRequestCents,
		ServiceAreaZipcode: strings.TrimSpace(in.ServiceAreaZipcode),
		CauseAreaIDs:       in.CauseIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := dp.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.store.FindDonorProfileByAccount(txCtx, actorID); err == nil {
			dp.ID = existing.ID
			dp.CreatedAt = existing.CreatedAt
			dp.PictureURL = existing.PictureURL
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
		}
		if err := s.store.UpsertDonorProfile(txCtx, dp); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save donor profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dp, nil
}

// DonorProfileFor returns the donor profile of an account.
func (s *Service) DonorProfileFor(ctx context.Context, accountID id.AccountID) (*DonorProfile, error) {
	dp, err := s.store.FindDonorProfileByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
	}
	return dp, nil
}
