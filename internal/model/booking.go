package model

import (
	"math"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// PaymentStatus tracks money movement for a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// PlatformFeeRate is the marketplace's cut of every booking.
const PlatformFeeRate = 0.15

// PlatformFee returns the fee in cents owed on totalPrice cents, rounded
// half away from zero.
func PlatformFee(totalPrice int64) int64 {
	return int64(math.Round(float64(totalPrice) * PlatformFeeRate))
}

// BookingFields holds the caller-supplied attributes of a booking. Money is
// in cents.
type BookingFields struct {
	ListingID     uint64        `json:"listingId"`     // bookings.listing_id
	RenterID      uint64        `json:"renterId"`      // bookings.renter_id
	StartDate     time.Time     `json:"startDate"`     // bookings.start_date
	EndDate       *time.Time    `json:"endDate"`       // bookings.end_date (nullable, open-ended)
	TotalPrice    int64         `json:"totalPrice"`    // bookings.total_price
	PlatformFee   int64         `json:"platformFee"`   // bookings.platform_fee
	Status        BookingStatus `json:"status"`        // bookings.status
	PaymentStatus PaymentStatus `json:"paymentStatus"` // bookings.payment_status
}

// Booking is a renter's reservation of a listing.
type Booking struct {
	ID uint64 `json:"id"`
	BookingFields
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of b.
func (b Booking) Clone() Booking {
	b.EndDate = clonePtr(b.EndDate)
	return b
}

// BookingPatch is a partial update of a booking.
type BookingPatch struct {
	ListingID     *uint64
	RenterID      *uint64
	StartDate     *time.Time
	EndDate       *time.Time
	TotalPrice    *int64
	PlatformFee   *int64
	Status        *BookingStatus
	PaymentStatus *PaymentStatus
}

// Apply merges the present fields of p onto b.
func (p BookingPatch) Apply(b *Booking) {
	setIf(&b.ListingID, p.ListingID)
	setIf(&b.RenterID, p.RenterID)
	setIf(&b.StartDate, p.StartDate)
	if p.EndDate != nil {
		b.EndDate = clonePtr(p.EndDate)
	}
	setIf(&b.TotalPrice, p.TotalPrice)
	setIf(&b.PlatformFee, p.PlatformFee)
	setIf(&b.Status, p.Status)
	setIf(&b.PaymentStatus, p.PaymentStatus)
}
