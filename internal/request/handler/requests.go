package handler

import (
	"matchport/internal/request"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	pkgstrings "matchport/pkg/platform/strings"
)

// CreateRequestRequest is the body of POST /api/requests and
// PUT /api/requests/{id}.
type CreateRequestRequest struct {
	CauseAreaID         string   `json:"cause_area_id"`
	Description         string   `json:"description"`
	AmountCents         int64    `json:"amount_cents"`
	Urgency             string   `json:"urgency"`
	Zipcode             string   `json:"zipcode"`
	MetroRegion         string   `json:"metro_region,omitempty"`
	County              string   `json:"county,omitempty"`
	IdentityCategories  []string `json:"identity_category_ids,omitempty"`
	ChallengeCategories []string `json:"challenge_category_ids,omitempty"`
}

// ToInput parses the wire strings into domain values. Field validation
// beyond parsing happens in the service.
func (r *CreateRequestRequest) ToInput() (request.CreateInput, error) {
	var in request.CreateInput

	causeID, err := id.ParseCategoryID(r.CauseAreaID)
	if err != nil {
		return in, err
	}
	urgency, err := request.ParseUrgency(r.Urgency)
	if err != nil {
		return in, err
	}
	region, err := request.ParseMetroRegion(r.MetroRegion)
	if err != nil {
		return in, err
	}
	county, err := request.ParseCounty(r.County)
	if err != nil {
		return in, err
	}
	identity, err := parseCategoryIDs(r.IdentityCategories)
	if err != nil {
		return in, err
	}
	challenge, err := parseCategoryIDs(r.ChallengeCategories)
	if err != nil {
		return in, err
	}

	return request.CreateInput{
		CauseAreaID:          causeID,
		Description:          r.Description,
		AmountCents:          r.AmountCents,
		Urgency:              urgency,
		Zipcode:              r.Zipcode,
		MetroRegion:          region,
		County:               county,
		IdentityCategoryIDs:  identity,
		ChallengeCategoryIDs: challenge,
	}, nil
}

func parseCategoryIDs(raw []string) ([]id.CategoryID, error) {
	raw = pkgstrings.DedupeAndTrim(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.CategoryID, 0, len(raw))
	for _, s := range raw {
		cid, err := id.ParseCategoryID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, cid)
	}
	return out, nil
}

// ClaimRequest is the body of POST /api/claim/{id}.
type ClaimRequest struct {
	DonorNote string `json:"donor_note,omitempty"`
}

// NoteRequest is the body of POST /api/requests/{id}/note.
type NoteRequest struct {
	Note string `json:"note"`
}

func (r *NoteRequest) Validate() error {
	if r.Note == "" {
		return dErrors.New(dErrors.CodeValidation, "note is required")
	}
	return nil
}

// FulfillRequest is the body of POST /api/fulfill/{id}.
type FulfillRequest struct {
	FulfillmentType string `json:"fulfillment_type"`
	DeviceCondition string `json:"device_condition,omitempty"`
	DonorNotes      string `json:"donor_notes,omitempty"`
}

func (r *FulfillRequest) ToInput() (request.FulfillInput, error) {
	var in request.FulfillInput
	ftype, err := request.ParseFulfillmentType(r.FulfillmentType)
	if err != nil {
		return in, err
	}
	condition, err := request.ParseDeviceCondition(r.DeviceCondition)
	if err != nil {
		return in, err
	}
	return request.FulfillInput{
		Type:            ftype,
		DeviceCondition: condition,
		DonorNotes:      r.DonorNotes,
	}, nil
}
