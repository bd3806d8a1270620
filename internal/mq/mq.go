// Package mq wraps the AMQP connection and the exchange topology used for
// order and table lifecycle events.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange        = "orders_topic"
	NotificationsExchange = "notifications_fanout"
	DeadLetterExchange    = "dlx"

	KitchenQueue       = "kitchen.q"
	NotificationsQueue = "notifications.q"
	DeadLetterQueue    = "dlq"
)

// Publisher is the narrow surface services publish through, so tests can
// substitute a recording fake.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, priority uint8, v any) error
}

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareTopology sets up exchanges and queues idempotently. Kitchen consumers
// bind per order priority; notification screens get every event via fanout.
func (c *Client) DeclareTopology() error {
	if err := c.ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare orders exchange")
	}
	if err := c.ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare notifications exchange")
	}
	if err := c.ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare dead-letter exchange")
	}

	if _, err := c.ch.QueueDeclare(KitchenQueue, true, false, false, false, amqp.Table{
		"x-max-priority":            int32(10),
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": DeadLetterQueue,
	}); err != nil {
		return errors.Wrap(err, "declare kitchen queue")
	}
	if _, err := c.ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare notifications queue")
	}
	if _, err := c.ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare dead-letter queue")
	}

	if err := c.ch.QueueBind(KitchenQueue, "kitchen.*", OrdersExchange, false, nil); err != nil {
		return errors.Wrap(err, "bind kitchen queue")
	}
	if err := c.ch.QueueBind(NotificationsQueue, "", NotificationsExchange, false, nil); err != nil {
		return errors.Wrap(err, "bind notifications queue")
	}
	return nil
}

// Publish marshals v to JSON and sends it as a persistent message.
func (c *Client) Publish(ctx context.Context, exchange, key string, priority uint8, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}
	return c.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Priority:     priority,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

// Nop is a Publisher that drops everything, used when the broker is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, uint8, any) error { return nil }
