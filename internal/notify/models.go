// Package notify creates in-app notifications and hands the matching emails
// to a best-effort transport. The stored row is the authoritative signal
// that a recipient was informed; email delivery may fail without affecting
// the command that triggered it.
package notify

import (
	"time"

	id "matchport/pkg/domain"
)

// Type tags what happened to produce a notification.
type Type string

const (
	TypeClaimed   Type = "claimed"
	TypeFulfilled Type = "fulfilled"
	TypeDenied    Type = "denied"
	TypeApproved  Type = "approved"
	TypeEdited    Type = "edited"
	TypeVetting   Type = "vetting"
	TypeWelcome   Type = "welcome"
)

// Notification is an in-app message for one recipient. RequestID is nil for
// account-level events (vetting decisions, welcome).
type Notification struct {
	ID          id.NotificationID
	RequestID   *id.RequestID
	Type        Type
	Title       string
	Message     string
	RecipientID id.AccountID
	Read        bool
	CreatedAt   time.Time
}
