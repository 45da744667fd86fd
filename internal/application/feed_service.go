package application

import (
	"context"
	"fmt"
	"log/slog"
)

// FeedService exposes the stored dashboard notifications to their recipient.
type FeedService struct {
	store  NotificationStore
	logger *slog.Logger
}

// NewFeedService wires dependencies for the notification feed.
func NewFeedService(store NotificationStore, logger *slog.Logger) *FeedService {
	return &FeedService{store: store, logger: defaultLogger(logger)}
}

// ListNotifications returns the caller's feed, newest first. A limit of zero or less
// returns all entries.
func (s *FeedService) ListNotifications(ctx context.Context, principal Principal, limit int) ([]StoredNotification, error) {
	if s == nil {
		return nil, fmt.Errorf("FeedService is nil")
	}

	notes, err := s.store.ListNotificationsForUser(ctx, principal.UserID, limit)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return notes, nil
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (s *FeedService) MarkNotificationRead(ctx context.Context, principal Principal, notificationID string) error {
	if s == nil {
		return fmt.Errorf("FeedService is nil")
	}

	if err := s.store.MarkNotificationRead(ctx, principal.UserID, notificationID); err != nil {
		return mapRepoError(err)
	}
	return nil
}
