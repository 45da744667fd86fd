// Package hardware talks to the doorbell hardware over a message broker. The
// Channel abstraction carries opaque payloads on routing keys; the Actuator turns
// the publish-then-wait-for-ack handshake into a synchronous call.
package hardware

import "context"

// Message is one payload received from the hardware channel.
type Message struct {
	Topic string
	Body  []byte
}

// CancelFunc tears down a subscription.
type CancelFunc func()

// Channel is a bidirectional link to the door hardware.
type Channel interface {
	// Publish sends a payload on the given routing key.
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe starts delivering messages for the given routing key. The returned
	// cancel function must be called to release the subscription; afterwards the
	// message channel is closed.
	Subscribe(ctx context.Context, topic string) (<-chan Message, CancelFunc, error)
}
