package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

// Nop discards every event. It is wired in when events are disabled.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

// AMQPPublisher publishes persistent JSON messages to a durable topic
// exchange. The connection is opened lazily and re-opened after a failure,
// so a broker outage never blocks startup or stalls requests for long.
type AMQPPublisher struct {
	url      string
	exchange string
	log      *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time // no dial attempts before this after a failure
}

// Dial bounds. A broker that accepts TCP but never answers the handshake
// costs one request at most DialTimeout; requests arriving during the
// following RetryCooldown fail fast instead of dialing again.
const (
	DialTimeout   = 2 * time.Second
	RetryCooldown = 5 * time.Second
)

// ErrUnavailable is returned while the publisher is waiting out
// RetryCooldown after a failed dial.
var ErrUnavailable = errors.New("rabbitmq unavailable")

// NewAMQPPublisher returns a publisher for exchange on the broker at url.
func NewAMQPPublisher(url, exchange string, log *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, exchange: exchange, log: log}
}

// channel returns an open channel, dialing when needed. The dial is bounded
// by DialTimeout and by ctx's deadline. Callers hold p.mu.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	if time.Now().Before(p.retryAt) {
		return nil, ErrUnavailable
	}
	timeout := DialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		p.retryAt = time.Now().Add(RetryCooldown)
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// Publish marshals payload and sends it with routing key key. Errors are
// logged and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("rabbitmq: marshal event failed", "key", key, "err", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		p.log.Error("rabbitmq: connect failed", "key", key, "err", err)
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         key,
		Body:         body,
	})
	if err != nil {
		p.log.Error("rabbitmq: publish failed", "key", key, "err", err)
		p.closeLocked()
		return err
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
