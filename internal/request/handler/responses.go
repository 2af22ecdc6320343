package handler

import (
	"time"

	"matchport/internal/request"
)

// RequestResponse is the wire form of a request.
type RequestResponse struct {
	ID           string     `json:"id"`
	OrgID        string     `json:"organization_id"`
	CauseAreaID  string     `json:"cause_area_id"`
	Description  string     `json:"description"`
	AmountCents  int64      `json:"amount_cents"`
	Amount       string     `json:"amount"`
	Urgency      string     `json:"urgency"`
	Zipcode      string     `json:"zipcode"`
	MetroRegion  string     `json:"metro_region,omitempty"`
	County       string     `json:"county,omitempty"`
	Status       string     `json:"status"`
	DonorID      string     `json:"donor_id,omitempty"`
	DonorNote    string     `json:"donor_note,omitempty"`
	DenialReason string     `json:"denial_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
	FulfilledAt  *time.Time `json:"fulfilled_at,omitempty"`
	DeniedAt     *time.Time `json:"denied_at,omitempty"`
}

func FromRequest(r *request.Request) *RequestResponse {
	resp := &RequestResponse{
		ID:           r.ID.String(),
		OrgID:        r.OrgID.String(),
		CauseAreaID:  r.CauseAreaID.String(),
		Description:  r.Description,
		AmountCents:  r.AmountCents,
		Amount:       r.AmountDollars(),
		Urgency:      string(r.Urgency),
		Zipcode:      r.Zipcode,
		MetroRegion:  string(r.MetroRegion),
		County:       string(r.County),
		Status:       string(r.Status),
		DonorNote:    r.DonorNote,
		DenialReason: r.DenialReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ClaimedAt:    r.ClaimedAt,
		FulfilledAt:  r.FulfilledAt,
		DeniedAt:     r.DeniedAt,
	}
	if r.DonorID != nil {
		resp.DonorID = r.DonorID.String()
	}
	return resp
}

func FromRequests(list []*request.Request) []*RequestResponse {
	out := make([]*RequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, FromRequest(r))
	}
	return out
}

// ClaimResponse acknowledges POST /api/claim/{id}.
type ClaimResponse struct {
	Success   bool       `json:"success"`
	ClaimedAt *time.Time `json:"claimed_at"`
}

// FulfillResponse acknowledges POST /api/fulfill/{id}.
type FulfillResponse struct {
	Success     bool       `json:"success"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
}

// ReleaseResponse acknowledges POST /api/unclaim/{id}.
type ReleaseResponse struct {
	Success bool `json:"success"`
}

// FulfillmentResponse is the wire form of a fulfillment record.
type FulfillmentResponse struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"request_id"`
	Type            string    `json:"type"`
	DeviceCondition string    `json:"device_condition,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func FromFulfillment(f *request.FulfillmentRecord) *FulfillmentResponse {
	return &FulfillmentResponse{
		ID:              f.ID.String(),
		RequestID:       f.RequestID.String(),
		Type:            string(f.Type),
		DeviceCondition: string(f.DeviceCondition),
		Notes:           f.DonorNotes,
		CreatedAt:       f.CreatedAt,
	}
}
