package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"centsible/internal/logger"
)

// Publisher sends domain events.
type Publisher interface {
	PublishBillReminder(ctx context.Context, m *BillReminder) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

// PublishBillReminder implements Publisher.
func (NoopPublisher) PublishBillReminder(context.Context, *BillReminder) error { return nil }

// Client publishes and consumes events on a durable topic exchange.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

// NewClient connects to the broker and declares the exchange and queue.
func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{conn: conn, channel: channel, exchange: exchange, queue: queue}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return c, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.channel.QueueBind(c.queue, RoutingKeyBillReminder, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishBillReminder publishes a persistent bill reminder event.
func (c *Client) PublishBillReminder(ctx context.Context, m *BillReminder) error {
	body, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchange, RoutingKeyBillReminder, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    m.BillID + ":" + m.DueDate.Format("2006-01-02"),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logger.Get().Infow("published bill reminder", "bill_id", m.BillID, "user_id", m.UserID, "exchange", c.exchange)
	return nil
}

// ConsumeBillReminders hands every reminder on the queue to handler until ctx
// is done. Malformed messages are dropped; handler failures are requeued.
func (c *Client) ConsumeBillReminders(ctx context.Context, handler func(context.Context, *BillReminder) error) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.Named("events")
	log.Infow("consuming bill reminders", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, d, handler)
		}
	}
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handler func(context.Context, *BillReminder) error) {
	settle(ctx, d, d.Body, handler)
}

func settle(ctx context.Context, ack acknowledger, body []byte, handler func(context.Context, *BillReminder) error) {
	log := logger.Named("events")

	m, err := BillReminderFromJSON(body)
	if err != nil {
		log.Errorw("dropping malformed message", "error", err)
		_ = ack.Nack(false, false)
		return
	}
	if err := handler(ctx, m); err != nil {
		log.Errorw("failed to handle bill reminder", "error", err, "bill_id", m.BillID)
		_ = ack.Nack(false, true)
		return
	}
	_ = ack.Ack(false)
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
