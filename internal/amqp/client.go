package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	// maxFailures is the consecutive failure count that opens the circuit
	maxFailures = 5
	// openTimeout is how long the circuit stays open before probing again
	openTimeout = 30 * time.Second
	// maxPublishAttempts bounds the retry loop for a single publish
	maxPublishAttempts = 3
)

type Client struct {
	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	url          string
	exchangeName string
	queueName    string

	// circuit breaker state, accessed atomically; lastFailureNano is a
	// unix-nano timestamp so the breaker never touches c.mu
	failureCount    int64
	state           int32
	lastFailureNano int64
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	return nil
}

func (c *Client) setup() error {
	// Declare exchange
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Bind queue to exchange
	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// exponentialBackoff returns the wait before the given retry attempt,
// doubling from one second and capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	backoff := time.Second << uint(attempt)
	if backoff > 30*time.Second {
		return 30 * time.Second
	}
	return backoff
}

// isConnectionError reports whether the error looks like a broken
// connection worth reconnecting over, as opposed to a protocol or
// validation failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"closed network connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// isCircuitOpen reports whether publishing is currently blocked. An open
// circuit transitions to half-open once the timeout elapses so the next
// publish can probe the broker.
func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	lastFailure := time.Unix(0, atomic.LoadInt64(&c.lastFailureNano))
	if time.Since(lastFailure) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	failures := atomic.AddInt64(&c.failureCount, 1)
	atomic.StoreInt64(&c.lastFailureNano, time.Now().UnixNano())
	if failures >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	return c.connect()
}

// currentChannel snapshots the channel under the lock. reconnect swaps
// the channel, so callers must not read the field directly.
func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// PublishTransactionSync publishes a sync request for a ledger entry
func (c *Client) PublishTransactionSync(ctx context.Context, id string) error {
	msg := NewTransactionSyncMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.publish(ctx, MessageTypeSync, body)
}

// PublishTransactionDelete publishes a delete request for a ledger entry
func (c *Client) PublishTransactionDelete(ctx context.Context, id string) error {
	msg := NewTransactionDeleteMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.publish(ctx, MessageTypeDelete, body)
}

func (c *Client) publish(ctx context.Context, messageType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, refusing to publish to %s", c.exchangeName)
	}

	var lastErr error
	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
			if err := c.reconnect(); err != nil {
				lastErr = err
				c.recordFailure()
				continue
			}
		}

		channel := c.currentChannel()
		if channel == nil {
			lastErr = fmt.Errorf("channel is not open")
			c.recordFailure()
			continue
		}

		publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := channel.PublishWithContext(
			publishCtx,
			c.exchangeName, // exchange
			c.queueName,    // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Type:         messageType,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
		cancel()

		if err == nil {
			c.recordSuccess()
			slog.InfoContext(ctx, "Published transaction message",
				"type", messageType,
				"exchange", c.exchangeName,
				"queue", c.queueName)
			return nil
		}

		lastErr = err
		c.recordFailure()
		if !isConnectionError(err) {
			break
		}
		slog.WarnContext(ctx, "Publish failed on broken connection, retrying",
			"attempt", attempt+1,
			"error", err)
	}

	return fmt.Errorf("publish message: %w", lastErr)
}

// ConsumeTransactionEvents consumes sync and delete messages, dispatching
// on the delivery type. Handler errors requeue the delivery; malformed
// payloads are rejected without requeue.
func (c *Client) ConsumeTransactionEvents(
	ctx context.Context,
	syncHandler func(context.Context, *TransactionSyncMessage) error,
	deleteHandler func(context.Context, *TransactionDeleteMessage) error,
) error {
	channel := c.currentChannel()
	if channel == nil {
		return fmt.Errorf("channel is not open")
	}
	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming transaction messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, syncHandler, deleteHandler)
		}
	}
}

func (c *Client) dispatch(
	ctx context.Context,
	delivery amqp091.Delivery,
	syncHandler func(context.Context, *TransactionSyncMessage) error,
	deleteHandler func(context.Context, *TransactionDeleteMessage) error,
) {
	switch delivery.Type {
	case MessageTypeDelete:
		msg, err := TransactionDeleteMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal delete message", "error", err)
			delivery.Nack(false, false) // reject and don't requeue
			return
		}
		if err := deleteHandler(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle delete message", "error", err, "id", msg.ID)
			delivery.Nack(false, true) // reject and requeue
			return
		}
		delivery.Ack(false)
		slog.InfoContext(ctx, "Processed transaction delete message", "id", msg.ID)

	default:
		msg, err := TransactionSyncMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal sync message", "error", err)
			delivery.Nack(false, false) // reject and don't requeue
			return
		}
		if err := syncHandler(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle sync message", "error", err, "id", msg.ID)
			delivery.Nack(false, true) // reject and requeue
			return
		}
		delivery.Ack(false)
		slog.InfoContext(ctx, "Processed transaction sync message", "id", msg.ID)
	}
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}
