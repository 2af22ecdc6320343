package notify

import (
	"context"

	id "matchport/pkg/domain"
)

// Store persists notifications. Implementations return sentinel.ErrNotFound
// for unknown IDs.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipient id.AccountID) ([]*Notification, error)
	CountUnread(ctx context.Context, recipient id.AccountID) (int, error)
	// MarkRead flips the read flag; it is scoped to the recipient so one
	// account cannot clear another's notifications.
	MarkRead(ctx context.Context, recipient id.AccountID, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context, recipient id.AccountID) error
}
