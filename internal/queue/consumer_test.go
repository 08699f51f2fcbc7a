package queue

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatActivity(t *testing.T) {
	body, err := json.Marshal(BookingEvent{
		BookingID:     1,
		ListingID:     2,
		RenterID:      3,
		Status:        "confirmed",
		PaymentStatus: "paid",
		TotalPrice:    36000,
		PlatformFee:   5400,
	})
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	line, err := FormatActivity(BookingCreated, at, body)
	require.NoError(t, err)
	require.Equal(t,
		`[2024-03-01T10:00:00Z] booking.created | bookingId=1 | listingId=2 | occurredAt="" | paymentStatus="paid" | platformFee=5400 | renterId=3 | status="confirmed" | totalPrice=36000`+"\n",
		line)
}

func TestFormatActivityRejectsInvalidJSON(t *testing.T) {
	_, err := FormatActivity(MessageSent, time.Now(), []byte("{"))
	require.Error(t, err)
}

func TestActivityConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity.log")
	a := &ActivityConsumer{LogPath: path, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, a.handle(MessageSent, at, []byte(`{"messageId":7}`)))
	require.NoError(t, a.handle(MessageRead, at, []byte(`{"messageId":7}`)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"[2024-03-01T10:00:00Z] message.sent | messageId=7\n[2024-03-01T10:00:00Z] message.read | messageId=7\n",
		string(got))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.Publish(t.Context(), ListingCreated, ListingEvent{ListingID: 1}))
	require.NoError(t, p.Close())
}
