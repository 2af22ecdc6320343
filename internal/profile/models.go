// Package profile holds the organization and donor profiles that hang off
// accounts. Vetting status is derived from the owning account, never stored
// here.
package profile

import (
	"regexp"
	"strings"
	"time"

	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
)

var (
	zipcodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	einPattern     = regexp.MustCompile(`^\d{2}-\d{7}$`)
)

// ValidateZipcode checks the US ZIP format used across profiles and
// requests.
func ValidateZipcode(zip string) error {
	if !zipcodePattern.MatchString(zip) {
		return dErrors.New(dErrors.CodeValidation, "enter a valid ZIP code")
	}
	return nil
}

// Organization is the public profile of a CBO account.
type Organization struct {
	ID           id.OrgID
	AccountID    id.AccountID
	Name         string
	Website      string
	Mission      string
	Email        string
	Phone        string
	Address      string
	Zipcode      string
	EIN          string
	LogoEmoji    string
	LogoURL      string
	CauseAreaIDs []id.CategoryID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the fields a CBO submits when creating or updating its
// organization profile.
func (o *Organization) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "organization name is required")
	}
	if strings.TrimSpace(o.Mission) == "" {
		return dErrors.New(dErrors.CodeValidation, "mission is required")
	}
	if strings.TrimSpace(o.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "contact email is required")
	}
	if err := ValidateZipcode(o.Zipcode); err != nil {
		return err
	}
	if o.EIN != "" && !einPattern.MatchString(o.EIN) {
		return dErrors.New(dErrors.CodeValidation, "enter EIN in format: 12-3456789")
	}
	return nil
}

// DisplayLogo returns the emoji used in cards and lists when no logo image
// is set.
func (o *Organization) DisplayLogo() string {
	if o.LogoEmoji != "" {
		return o.LogoEmoji
	}
	return "🏢"
}

// DonorProfile is the profile of a donor account, carrying giving
// preferences used for matching.
type DonorProfile struct {
	ID                 id.DonorProfileID
	AccountID          id.AccountID
	Name               string
	Email              string
	Phone              string
	MaxPerRequestCents int64
	ServiceAreaZipcode string
	PictureURL         string
	CauseAreaIDs       []id.CategoryID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (d *DonorProfile) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "contact email is required")
	}
	if d.MaxPerRequestCents < 0 {
		return dErrors.New(dErrors.CodeValidation, "maximum per request must not be negative")
	}
	if d.ServiceAreaZipcode != "" {
		if err := ValidateZipcode(d.ServiceAreaZipcode); err != nil {
			return err
		}
	}
	return nil
}
