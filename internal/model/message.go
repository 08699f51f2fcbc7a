package model

import "time"

// MessageFields holds the caller-supplied attributes of a message.
type MessageFields struct {
	SenderID   uint64  `json:"senderId"`   // messages.sender_id
	ReceiverID uint64  `json:"receiverId"` // messages.receiver_id
	ListingID  *uint64 `json:"listingId"`  // messages.listing_id (nullable)
	BookingID  *uint64 `json:"bookingId"`  // messages.booking_id (nullable)
	Message    string  `json:"message"`    // messages.message
	IsRead     bool    `json:"isRead"`     // messages.is_read
}

// Message is a direct message between two users, optionally about a
// listing or a booking. Only IsRead changes after creation.
type Message struct {
	ID uint64 `json:"id"`
	MessageFields
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	m.ListingID = clonePtr(m.ListingID)
	m.BookingID = clonePtr(m.BookingID)
	return m
}
