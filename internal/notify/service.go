package notify

import (
	"context"
	"errors"

	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/sentinel"
)

// Service is the inbox read surface. Writes go through the Dispatcher.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Inbox lists the recipient's notifications, newest first.
func (s *Service) Inbox(ctx context.Context, recipient id.AccountID) ([]*Notification, error) {
	list, err := s.store.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return list, nil
}

// UnreadCount powers the badge in the navigation bar.
func (s *Service) UnreadCount(ctx context.Context, recipient id.AccountID) (int, error) {
	n, err := s.store.CountUnread(ctx, recipient)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notifications")
	}
	return n, nil
}

// MarkRead marks one notification read. Recipient-scoped: marking another
// account's notification reads as not found.
func (s *Service) MarkRead(ctx context.Context, recipient id.AccountID, notificationID id.NotificationID) error {
	if err := s.store.MarkRead(ctx, recipient, notificationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every notification of the recipient read.
func (s *Service) MarkAllRead(ctx context.Context, recipient id.AccountID) error {
	if err := s.store.MarkAllRead(ctx, recipient); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return nil
}
