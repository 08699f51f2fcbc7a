// Package queue defines the domain events the marketplace publishes over
// RabbitMQ, the publisher used by handlers and the background consumer that
// turns events into an activity log.
package queue

// Routing keys on the events exchange.
const (
	ListingCreated = "listing.created"
	ListingDeleted = "listing.deleted"
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	ReviewCreated  = "review.created"
	MessageSent    = "message.sent"
	MessageRead    = "message.read"
)

// ListingEvent is published when a listing is created or soft-deleted.
type ListingEvent struct {
	ListingID     uint64 `json:"listingId"`
	HostID        uint64 `json:"hostId"`
	Title         string `json:"title"`
	City          string `json:"city"`
	PricePerMonth int64  `json:"pricePerMonth"`
	OccurredAt    string `json:"occurredAt"`
}

// BookingEvent carries enough of a booking for downstream consumers to
// notify the host and reconcile fees without querying the store.
type BookingEvent struct {
	BookingID     uint64 `json:"bookingId"`
	ListingID     uint64 `json:"listingId"`
	RenterID      uint64 `json:"renterId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	TotalPrice    int64  `json:"totalPrice"`
	PlatformFee   int64  `json:"platformFee"`
	OccurredAt    string `json:"occurredAt"`
}

// ReviewEvent is published for every new review, public or not.
type ReviewEvent struct {
	ReviewID   uint64 `json:"reviewId"`
	BookingID  uint64 `json:"bookingId"`
	ReviewerID uint64 `json:"reviewerId"`
	ReviewedID uint64 `json:"reviewedId"`
	Rating     int    `json:"rating"`
	IsPublic   bool   `json:"isPublic"`
	OccurredAt string `json:"occurredAt"`
}

// MessageEvent is published when a message is sent or read.
type MessageEvent struct {
	MessageID  uint64 `json:"messageId"`
	SenderID   uint64 `json:"senderId"`
	ReceiverID uint64 `json:"receiverId"`
	OccurredAt string `json:"occurredAt"`
}
