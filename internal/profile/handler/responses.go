package handler

import (
	"matchport/internal/profile"
	id "matchport/pkg/domain"
)

// OrgResponse is the full organization profile, returned to its owner and
// on the public directory.
type OrgResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Website      string   `json:"website,omitempty"`
	Mission      string   `json:"mission"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	Zipcode      string   `json:"zipcode"`
	EIN          string   `json:"ein,omitempty"`
	Logo         string   `json:"logo"`
	LogoURL      string   `json:"logo_url,omitempty"`
	CauseAreaIDs []string `json:"cause_area_ids,omitempty"`
}

func FromOrganization(o *profile.Organization) *OrgResponse {
	return &OrgResponse{
		ID:           o.ID.String(),
		Name:         o.Name,
		Website:      o.Website,
		Mission:      o.Mission,
		Email:        o.Email,
		Phone:        o.Phone,
		Address:      o.Address,
		Zipcode:      o.Zipcode,
		EIN:          o.EIN,
		Logo:         o.DisplayLogo(),
		LogoURL:      o.LogoURL,
		CauseAreaIDs: categoryStrings(o.CauseAreaIDs),
	}
}

func FromOrganizations(orgs []*profile.Organization) []*OrgResponse {
	out := make([]*OrgResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, FromOrganization(o))
	}
	return out
}

// DonorResponse is the donor profile view.
type DonorResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone,omitempty"`
	MaxPerRequestCents int64    `json:"max_per_request_cents"`
	ServiceAreaZipcode string   `json:"service_area_zipcode,omitempty"`
	PictureURL         string   `json:"picture_url,omitempty"`
	CauseAreaIDs       []string `json:"cause_area_ids,omitempty"`
}

func FromDonorProfile(d *profile.DonorProfile) *DonorResponse {
	return &DonorResponse{
		ID:                 d.ID.String(),
		Name:               d.Name,
		Email:              d.Email,
		Phone:              d.Phone,
		MaxPerRequestCents: d.MaxPerRequestCents,
		ServiceAreaZipcode: d.ServiceAreaZipcode,
		PictureURL:         d.PictureURL,
		CauseAreaIDs:       categoryStrings(d.CauseAreaIDs),
	}
}

func categoryStrings(ids []id.CategoryID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, cid := range ids {
		out = append(out, cid.String())
	}
	return out
}
