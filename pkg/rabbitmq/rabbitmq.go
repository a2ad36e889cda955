// Package rabbitmq publishes and consumes purchase events over AMQP.
package rabbitmq

import (
	"encoding/json"
	"sync"
	"time"

	"warehouse/internal/models"

	"github.com/pkg/errors"
	amqp "github.com/streadway/amqp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultQueue receives purchase events when Config.Queue is empty.
const DefaultQueue = "purchase_queue"

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Client holds the RabbitMQ connection and channel. An amqp.Channel must not
// be used for publishing from several goroutines at once, so Publish is
// serialized.
type Client struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	log     *zap.Logger

	mu sync.Mutex
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// purchase queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	c, err := newClient(ch, cfg.Queue, log)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	c.conn = conn

	c.log.Info("RabbitMQ client connected", zap.String("queue", c.queue))
	return c, nil
}

func newClient(ch channel, queue string, log *zap.Logger) (*Client, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "failed to declare %s", queue)
	}
	return &Client{channel: ch, queue: queue, log: log.Named("rabbitmq")}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var err error
	if c.channel != nil {
		err = multierr.Append(err, errors.Wrap(c.channel.Close(), "failed to close channel"))
	}
	if c.conn != nil {
		err = multierr.Append(err, errors.Wrap(c.conn.Close(), "failed to close connection"))
	}
	return err
}

// Publish sends a persistent JSON message to the client's queue through the
// default exchange.
func (c *Client) Publish(body []byte) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish("", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	return errors.Wrap(err, "failed to publish message")
}

// PublishPurchase publishes a committed purchase.
func (c *Client) PublishPurchase(event models.PurchaseEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal purchase event")
	}
	if err := c.Publish(body); err != nil {
		return err
	}
	c.log.Debug("Purchase event sent",
		zap.String("product_id", event.ProductID),
		zap.Int("quantity", event.Quantity),
	)
	return nil
}

// ConsumePurchaseEvents registers a consumer on the queue and hands every
// decoded event to handler in a background goroutine. It returns once the
// consumer is registered.
func (c *Client) ConsumePurchaseEvents(handler func(models.PurchaseEvent) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "failed to register consumer")
	}

	c.log.Info("Waiting for purchase events", zap.String("queue", c.queue))
	go c.dispatch(msgs, handler)
	return nil
}

// dispatch acks handled messages, requeues those whose handler failed and
// drops those that cannot be decoded. It returns when msgs is closed.
func (c *Client) dispatch(msgs <-chan amqp.Delivery, handler func(models.PurchaseEvent) error) {
	for msg := range msgs {
		var event models.PurchaseEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			c.log.Warn("Dropping malformed purchase event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
			if nackErr := msg.Nack(false, false); nackErr != nil {
				c.log.Error("Error nacking message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(nackErr))
			}
			continue
		}

		if err := handler(event); err != nil {
			c.log.Warn("Error processing purchase event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
			if nackErr := msg.Nack(false, true); nackErr != nil {
				c.log.Error("Error nacking message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(nackErr))
			}
			continue
		}

		if ackErr := msg.Ack(false); ackErr != nil {
			c.log.Error("Error acking message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(ackErr))
		}
	}
}
