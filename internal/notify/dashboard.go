package notify

import (
	"context"

	"github.com/example/house-doorbell/internal/application"
)

// NotificationSaver persists one notification for all its recipients.
type NotificationSaver interface {
	SaveNotification(ctx context.Context, note application.Notification) error
}

// DashboardSink stores notifications so clients can read them back from the
// dashboard feed.
type DashboardSink struct {
	saver NotificationSaver
}

// NewDashboardSink wraps a saver as a sink.
func NewDashboardSink(saver NotificationSaver) *DashboardSink {
	return &DashboardSink{saver: saver}
}

// Send implements application.NotificationSink.
func (s *DashboardSink) Send(ctx context.Context, note application.Notification) error {
	return s.saver.SaveNotification(ctx, note)
}
