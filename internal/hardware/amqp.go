package hardware

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel implements Channel on top of a RabbitMQ topic exchange. The doorbell
// controller publishes acknowledgements on the status routing key and listens on the
// per-door open keys.
type AMQPChannel struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string

	mu     sync.Mutex
	closed bool
}

// DialAMQP connects to the broker and declares the topic exchange.
func DialAMQP(url, exchange string) (*AMQPChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPChannel{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends a payload on the given routing key.
func (c *AMQPChannel) Publish(ctx context.Context, topic string, payload []byte) error {
	return c.ch.PublishWithContext(ctx, c.exchange, topic, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        payload,
	})
}

// Subscribe binds an exclusive auto-delete queue to the routing key and forwards
// deliveries until the subscription is cancelled.
func (c *AMQPChannel) Subscribe(ctx context.Context, topic string) (<-chan Message, CancelFunc, error) {
	// A fresh channel per subscription so cancelling one does not disturb others.
	subCh, err := c.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := subCh.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = subCh.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := subCh.QueueBind(q.Name, topic, c.exchange, false, nil); err != nil {
		_ = subCh.Close()
		return nil, nil, fmt.Errorf("bind %s: %w", topic, err)
	}

	deliveries, err := subCh.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = subCh.Close()
		return nil, nil, fmt.Errorf("consume %s: %w", topic, err)
	}

	out := make(chan Message)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- Message{Topic: delivery.RoutingKey, Body: delivery.Body}:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = subCh.Close()
		})
	}
	return out, cancel, nil
}

// Close tears down the broker connection.
func (c *AMQPChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
