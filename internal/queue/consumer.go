package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityQueue receives a copy of every event on the exchange.
const ActivityQueue = "spaceshare.activity"

// ActivityConsumer appends one line per event to a log file.
type ActivityConsumer struct {
	URL      string
	Exchange string
	LogPath  string
	Log      *slog.Logger
}

// Run connects to the broker, binds ActivityQueue to every routing key on
// the exchange and consumes until ctx is cancelled. Broker failures trigger
// a reconnect with exponential backoff capped at 30s. A message that cannot
// be handled is rejected without requeue so it cannot loop.
func (a *ActivityConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(a.URL)
		if err != nil {
			a.Log.Warn("activity-consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = a.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.Log.Warn("activity-consumer: consume loop ended; reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (a *ActivityConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		a.Log.Warn("activity-consumer: set QoS failed", "err", err)
	}
	if err := ch.ExchangeDeclare(a.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(ActivityQueue, "#", a.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ActivityQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := a.handle(d.RoutingKey, d.Timestamp, d.Body); err != nil {
			a.Log.Error("activity-consumer: handle message failed", "key", d.RoutingKey, "err", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (a *ActivityConsumer) handle(key string, at time.Time, body []byte) error {
	line, err := FormatActivity(key, at, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(a.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatActivity renders one event as a single log line of sorted
// key=value pairs, e.g.
//
//	[2024-03-01T10:00:00Z] booking.created | bookingId=1 | listingId=2 | ...
func FormatActivity(key string, at time.Time, body []byte) (string, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", at.UTC().Format(time.RFC3339), key)
	for _, k := range names {
		switch v := fields[k].(type) {
		case string:
			fmt.Fprintf(&b, " | %s=%q", k, v)
		case float64:
			fmt.Fprintf(&b, " | %s=%s", k, strconvNumber(v))
		default:
			fmt.Fprintf(&b, " | %s=%v", k, v)
		}
	}
	b.WriteByte('\n')
	return b.String(), nil
}

// strconvNumber prints integral JSON numbers without an exponent.
func strconvNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// StartActivityConsumer runs an ActivityConsumer in a new goroutine until
// ctx is cancelled.
func StartActivityConsumer(ctx context.Context, url, exchange, logPath string, log *slog.Logger) {
	a := &ActivityConsumer{URL: url, Exchange: exchange, LogPath: logPath, Log: log}
	go func() {
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("activity-consumer: stopped", "err", err)
		}
	}()
}
