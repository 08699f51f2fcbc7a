package model

import "time"

// ReviewFields holds the caller-supplied attributes of a review.
type ReviewFields struct {
	BookingID  uint64  `json:"bookingId"`  // reviews.booking_id
	ReviewerID uint64  `json:"reviewerId"` // reviews.reviewer_id
	ReviewedID uint64  `json:"reviewedId"` // reviews.reviewed_id
	ListingID  *uint64 `json:"listingId"`  // reviews.listing_id (nullable)
	Rating     int     `json:"rating"`     // reviews.rating, 1..5
	Comment    *string `json:"comment"`    // reviews.comment (nullable)
	IsPublic   bool    `json:"isPublic"`   // reviews.is_public
}

// Review is feedback left by one party of a booking about the other.
// Reviews are immutable once created.
type Review struct {
	ID uint64 `json:"id"`
	ReviewFields
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of r.
func (r Review) Clone() Review {
	r.ListingID = clonePtr(r.ListingID)
	r.Comment = clonePtr(r.Comment)
	return r
}
