package queue

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// silentBroker accepts TCP connections and never answers the handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestAMQPPublisherBoundsDialToUnresponsiveBroker(t *testing.T) {
	p := NewAMQPPublisher(silentBroker(t), "spaceshare.events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, ListingCreated, ListingEvent{ListingID: 1})
	require.Error(t, err)
	require.Less(t, time.Since(start), DialTimeout+time.Second)

	// Within the cooldown further publishes fail without dialing.
	start = time.Now()
	err = p.Publish(ctx, ListingCreated, ListingEvent{ListingID: 2})
	require.ErrorIs(t, err, ErrUnavailable)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAMQPPublisherHonoursShorterContextDeadline(t *testing.T) {
	p := NewAMQPPublisher(silentBroker(t), "spaceshare.events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.Error(t, p.Publish(ctx, MessageSent, MessageEvent{MessageID: 1}))
	require.Less(t, time.Since(start), time.Second)
}

func TestAMQPPublisherConcurrentWritersDoNotQueueOnDial(t *testing.T) {
	p := NewAMQPPublisher(silentBroker(t), "spaceshare.events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	start := time.Now()
	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = p.Publish(ctx, BookingCreated, BookingEvent{BookingID: uint64(i)})
		}()
	}
	wg.Wait()
	// One bounded dial, everyone else fails fast during the cooldown.
	require.Less(t, time.Since(start), DialTimeout+time.Second)
}
