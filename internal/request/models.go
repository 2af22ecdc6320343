// Package request implements the marketplace request lifecycle: the state
// machine moving a request between open, claimed, fulfilled, and denied,
// with the guards, side effects, and concurrency rules each transition
// carries.
package request

import (
	"fmt"
	"strings"
	"time"

	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
)

// Status drives all lifecycle rules.
type Status string

const (
	StatusOpen      Status = "open"
	StatusClaimed   Status = "claimed"
	StatusFulfilled Status = "fulfilled"
	StatusDenied    Status = "denied"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusClaimed, StatusFulfilled, StatusDenied:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown status: "+s)
	}
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func ParseUrgency(s string) (Urgency, error) {
	switch Urgency(s) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return Urgency(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "urgency must be low, medium, or high")
	}
}

// Rank orders urgencies for the board's urgency sort (high first).
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// MetroRegion and County are the program/service region tags.
type MetroRegion string

const (
	MetroAllKC MetroRegion = "all_kc_metro"
	MetroMO    MetroRegion = "kc_metro_mo"
	MetroKS    MetroRegion = "kc_metro_ks"
)

func ParseMetroRegion(s string) (MetroRegion, error) {
	switch MetroRegion(s) {
	case "", MetroAllKC, MetroMO, MetroKS:
		return MetroRegion(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown metro region: "+s)
	}
}

type County string

const (
	CountyCassMO        County = "cass_mo"
	CountyClayMO        County = "clay_mo"
	CountyJacksonMO     County = "jackson_mo"
	CountyLafayetteMO   County = "lafayette_mo"
	CountyPlatteMO      County = "platte_mo"
	CountyRayMO         County = "ray_mo"
	CountyJohnsonKS     County = "johnson_ks"
	CountyLeavenworthKS County = "leavenworth_ks"
	CountyWyandotteKS   County = "wyandotte_ks"
)

func ParseCounty(s string) (County, error) {
	switch County(s) {
	case "", CountyCassMO, CountyClayMO, CountyJacksonMO, CountyLafayetteMO,
		CountyPlatteMO, CountyRayMO, CountyJohnsonKS, CountyLeavenworthKS,
		CountyWyandotteKS:
		return County(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown county: "+s)
	}
}

// Request is the central marketplace entity.
//
// Invariant: status == open ⇔ DonorID == nil ⇔ all of ClaimedAt/FulfilledAt/
// DeniedAt are nil; exactly one of those timestamps is set when the status
// is claimed/fulfilled/denied respectively. The lifecycle service maintains
// this; stores only persist what they are given.
type Request struct {
	ID                   id.RequestID
	OrgID                id.OrgID
	CauseAreaID          id.CategoryID
	DonorID              *id.AccountID
	Description          string
	AmountCents          int64
	Urgency              Urgency
	Zipcode              string
	MetroRegion          MetroRegion
	County               County
	IdentityCategoryIDs  []id.CategoryID
	ChallengeCategoryIDs []id.CategoryID
	Status               Status
	DonorNote            string
	DenialReason         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ClaimedAt            *time.Time
	FulfilledAt          *time.Time
	DeniedAt             *time.Time
}

// AmountDollars formats the amount for titles and messages.
func (r *Request) AmountDollars() string {
	return fmt.Sprintf("%d.%02d", r.AmountCents/100, r.AmountCents%100)
}

// FulfillmentType records how a claimed request was completed.
type FulfillmentType string

const (
	FulfillmentMonetary FulfillmentType = "monetary"
	FulfillmentDevice   FulfillmentType = "device"
)

type DeviceCondition string

const (
	ConditionNew         DeviceCondition = "new"
	ConditionRefurbished DeviceCondition = "refurbished"
	ConditionUsedGood    DeviceCondition = "used_good"
)

func ParseFulfillmentType(s string) (FulfillmentType, error) {
	switch FulfillmentType(s) {
	case FulfillmentMonetary, FulfillmentDevice:
		return FulfillmentType(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "fulfillment type must be monetary or device")
	}
}

// ParseDeviceCondition accepts empty; FulfillInput.Validate enforces when a
// condition is required.
func ParseDeviceCondition(s string) (DeviceCondition, error) {
	switch DeviceCondition(s) {
	case "", ConditionNew, ConditionRefurbished, ConditionUsedGood:
		return DeviceCondition(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown device condition: "+s)
	}
}

// FulfillmentRecord is created exactly once, at the claimed→fulfilled
// transition.
type FulfillmentRecord struct {
	ID              id.FulfillmentID
	RequestID       id.RequestID
	Type            FulfillmentType
	DeviceCondition DeviceCondition
	DonorSatisfied  bool
	CBOSatisfied    bool
	DonorNotes      string
	CBONotes        string
	CreatedAt       time.Time
}

// CreateInput is the typed input for creating a request.
type CreateInput struct {
	CauseAreaID          id.CategoryID
	Description          string
	AmountCents          int64
	Urgency              Urgency
	Zipcode              string
	MetroRegion          MetroRegion
	County               County
	IdentityCategoryIDs  []id.CategoryID
	ChallengeCategoryIDs []id.CategoryID
}

const minAmountCents = 1

func (in *CreateInput) Validate() error {
	if in.CauseAreaID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "cause area is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if in.AmountCents < minAmountCents {
		return dErrors.New(dErrors.CodeValidation, "amount must be at least 0.01")
	}
	if _, err := ParseUrgency(string(in.Urgency)); err != nil {
		return err
	}
	if strings.TrimSpace(in.Zipcode) == "" {
		return dErrors.New(dErrors.CodeValidation, "ZIP code is required")
	}
	return nil
}

// UpdateInput carries the editable fields of an open request.
type UpdateInput struct {
	CauseAreaID          id.CategoryID
	Description          string
	AmountCents          int64
	Urgency              Urgency
	Zipcode              string
	MetroRegion          MetroRegion
	County               County
	IdentityCategoryIDs  []id.CategoryID
	ChallengeCategoryIDs []id.CategoryID
}

func (in *UpdateInput) Validate() error {
	create := CreateInput{
		CauseAreaID: in.CauseAreaID,
		Description: in.Description,
		AmountCents: in.AmountCents,
		Urgency:     in.Urgency,
		Zipcode:     in.Zipcode,
	}
	return create.Validate()
}

// FulfillInput is the typed input for the fulfill command.
type FulfillInput struct {
	Type            FulfillmentType
	DeviceCondition DeviceCondition
	DonorNotes      string
}

func (in *FulfillInput) Validate() error {
	switch in.Type {
	case FulfillmentMonetary:
		if in.DeviceCondition != "" {
			return dErrors.New(dErrors.CodeValidation, "device condition only applies to device fulfillments")
		}
	case FulfillmentDevice:
		switch in.DeviceCondition {
		case ConditionNew, ConditionRefurbished, ConditionUsedGood:
		default:
			return dErrors.New(dErrors.CodeValidation, "device fulfillment requires a device condition")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "fulfillment type must be monetary or device")
	}
	return nil
}
