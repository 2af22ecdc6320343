// Package domain defines the typed identifiers shared across the service.
//
// Each entity gets its own UUID-backed ID type so a request ID can never be
// passed where an account ID is expected. Parsing happens once, at trust
// boundaries (HTTP handlers, store scans); everything inward works with the
// typed values.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "matchport/pkg/domain-errors"
)

type (
	// AccountID identifies an Account (CBO, donor, or admin).
	AccountID uuid.UUID
	// OrgID identifies an Organization profile.
	OrgID uuid.UUID
	// DonorProfileID identifies a DonorProfile.
	DonorProfileID uuid.UUID
	// RequestID identifies a marketplace Request.
	RequestID uuid.UUID
	// FulfillmentID identifies a FulfillmentRecord.
	FulfillmentID uuid.UUID
	// HistoryID identifies a request history entry.
	HistoryID uuid.UUID
	// NotificationID identifies an in-app notification.
	NotificationID uuid.UUID
	// CategoryID identifies a catalog reference row (cause area,
	// identity category, challenge category).
	CategoryID uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must not be empty", kind))
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is not a valid UUID", kind))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must not be the nil UUID", kind))
	}
	return u, nil
}

func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID("account ID", s)
	return AccountID(u), err
}

func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID("organization ID", s)
	return OrgID(u), err
}

func ParseDonorProfileID(s string) (DonorProfileID, error) {
	u, err := parseUUID("donor profile ID", s)
	return DonorProfileID(u), err
}

func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID("request ID", s)
	return RequestID(u), err
}

func ParseFulfillmentID(s string) (FulfillmentID, error) {
	u, err := parseUUID("fulfillment ID", s)
	return FulfillmentID(u), err
}

func ParseHistoryID(s string) (HistoryID, error) {
	u, err := parseUUID("history ID", s)
	return HistoryID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID("notification ID", s)
	return NotificationID(u), err
}

func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseUUID("category ID", s)
	return CategoryID(u), err
}

func NewAccountID() AccountID           { return AccountID(uuid.New()) }
func NewOrgID() OrgID                   { return OrgID(uuid.New()) }
func NewDonorProfileID() DonorProfileID { return DonorProfileID(uuid.New()) }
func NewRequestID() RequestID           { return RequestID(uuid.New()) }
func NewFulfillmentID() FulfillmentID   { return FulfillmentID(uuid.New()) }
func NewHistoryID() HistoryID           { return HistoryID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }
func NewCategoryID() CategoryID         { return CategoryID(uuid.New()) }

func (id AccountID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AccountID) String() string   { return uuid.UUID(id).String() }
func (id OrgID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id OrgID) String() string       { return uuid.UUID(id).String() }
func (id DonorProfileID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DonorProfileID) String() string {
	return uuid.UUID(id).String()
}
func (id RequestID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) String() string      { return uuid.UUID(id).String() }
func (id FulfillmentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id FulfillmentID) String() string  { return uuid.UUID(id).String() }
func (id HistoryID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id HistoryID) String() string      { return uuid.UUID(id).String() }
func (id NotificationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id CategoryID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) String() string     { return uuid.UUID(id).String() }

// Text marshaling renders IDs as canonical UUID strings in JSON and other
// text encodings.

func (id AccountID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *AccountID) UnmarshalText(b []byte) error {
	v, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id OrgID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *OrgID) UnmarshalText(b []byte) error {
	v, err := ParseOrgID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id DonorProfileID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *DonorProfileID) UnmarshalText(b []byte) error {
	v, err := ParseDonorProfileID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id RequestID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *RequestID) UnmarshalText(b []byte) error {
	v, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id FulfillmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *FulfillmentID) UnmarshalText(b []byte) error {
	v, err := ParseFulfillmentID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id HistoryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *HistoryID) UnmarshalText(b []byte) error {
	v, err := ParseHistoryID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *NotificationID) UnmarshalText(b []byte) error {
	v, err := ParseNotificationID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id CategoryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *CategoryID) UnmarshalText(b []byte) error {
	v, err := ParseCategoryID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
