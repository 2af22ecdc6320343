package handler

// OrgRequest is the body of PUT /api/profile/organization.
type OrgRequest struct {
	Name         string   `json:"name"`
	Website      string   `json:"website,omitempty"`
	Mission      string   `json:"mission"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	Zipcode      string   `json:"zipcode"`
	EIN          string   `json:"ein,omitempty"`
	LogoEmoji    string   `json:"logo_emoji,omitempty"`
	CauseAreaIDs []string `json:"cause_area_ids,omitempty"`
}

// DonorRequest is the body of PUT /api/profile/donor.
type DonorRequest struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone,omitempty"`
	MaxPerRequestCents int64    `json:"max_per_request_cents"`
	ServiceAreaZipcode string   `json:"service_area_zipcode,omitempty"`
	CauseAreaIDs       []string `json:"cause_area_ids,omitempty"`
}
