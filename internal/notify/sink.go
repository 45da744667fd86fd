// Package notify provides the delivery backends behind the notification sink: the
// persisted dashboard feed and the push gateway.
package notify

import (
	"context"
	"errors"

	"github.com/example/house-doorbell/internal/application"
)

// Fanout delivers every notification to all configured sinks. One failing sink does
// not stop the others; the errors are joined.
type Fanout struct {
	sinks []application.NotificationSink
}

// NewFanout composes sinks into one.
func NewFanout(sinks ...application.NotificationSink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Send implements application.NotificationSink.
func (f *Fanout) Send(ctx context.Context, note application.Notification) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Send(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
