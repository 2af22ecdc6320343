package handler

import (
	"time"

	"matchport/internal/board"
	"matchport/internal/catalog"
	"matchport/internal/profile"
	requesthandler "matchport/internal/request/handler"
)

// OrgSummary is the trimmed organization view shown on board cards. The
// contact details stay off the public surface.
type OrgSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mission string `json:"mission,omitempty"`
	Website string `json:"website,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
	Logo    string `json:"logo"`
	LogoURL string `json:"logo_url,omitempty"`
}

func fromOrg(o *profile.Organization) *OrgSummary {
	return &OrgSummary{
		ID:      o.ID.String(),
		Name:    o.Name,
		Mission: o.Mission,
		Website: o.Website,
		Zipcode: o.Zipcode,
		Logo:    o.DisplayLogo(),
		LogoURL: o.LogoURL,
	}
}

// CardResponse is one board entry.
type CardResponse struct {
	Request      *requesthandler.RequestResponse `json:"request"`
	Organization *OrgSummary                     `json:"organization"`
}

func fromCards(cards []*board.Card) []*CardResponse {
	out := make([]*CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, &CardResponse{
			Request:      requesthandler.FromRequest(c.Request),
			Organization: fromOrg(c.Organization),
		})
	}
	return out
}

// PageResponse is the body of GET /requests.
type PageResponse struct {
	Cards      []*CardResponse `json:"cards"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

func FromPage(p *board.Page) *PageResponse {
	return &PageResponse{
		Cards:      fromCards(p.Cards),
		Total:      p.Total,
		Page:       p.Page,
		TotalPages: p.TotalPages,
	}
}

// TimelineEntry is one history row in a detail response.
type TimelineEntry struct {
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// DetailResponse is the body of GET /requests/{id}.
type DetailResponse struct {
	Request      *requesthandler.RequestResponse `json:"request"`
	Organization *OrgSummary                     `json:"organization"`
	Timeline     []TimelineEntry                 `json:"timeline"`
	Related      []*CardResponse                 `json:"related"`
}

func FromDetail(d *board.Detail) *DetailResponse {
	timeline := make([]TimelineEntry, 0, len(d.Timeline))
	for _, e := range d.Timeline {
		timeline = append(timeline, TimelineEntry{
			Action:      string(e.Action),
			Description: e.Description,
			Timestamp:   e.Timestamp,
		})
	}
	return &DetailResponse{
		Request:      requesthandler.FromRequest(d.Request),
		Organization: fromOrg(d.Organization),
		Timeline:     timeline,
		Related:      fromCards(d.Related),
	}
}

// CategoryResponse is one reference list entry.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func FromCategories(list []*catalog.Category) []*CategoryResponse {
	out := make([]*CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, &CategoryResponse{
			ID:          c.ID.String(),
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return out
}
