// Package account holds the identity model and the vetting gate that
// controls marketplace participation.
package account

import (
	"time"

	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
)

// Role is the closed set of account roles. It is fixed at registration and
// never changes afterwards.
type Role string

const (
	RoleCBO   Role = "cbo"
	RoleDonor Role = "donor"
	RoleAdmin Role = "admin"
)

// ParseRole validates an externally supplied role string. Admin accounts are
// provisioned out of band, so self-registration only accepts cbo and donor.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCBO, RoleDonor:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "role must be cbo or donor")
	}
}

// Account is a marketplace identity. IsVetted gates what the account may do:
// unvetted CBOs cannot create or edit requests, unvetted donors cannot claim.
// Donors start vetted, CBOs start unvetted pending admin review.
type Account struct {
	ID           id.AccountID
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	Phone        string
	IsVetted     bool
	VettingNote  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VettingEvent is one entry in the append-only vetting ledger. The
// free-text note on Account is overwritten on every admin decision; the
// ledger keeps the full trail.
type VettingEvent struct {
	ID        id.HistoryID
	AccountID id.AccountID
	AdminID   id.AccountID
	Vetted    bool
	Note      string
	Timestamp time.Time
}
