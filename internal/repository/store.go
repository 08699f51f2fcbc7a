package repository

import (
	"context"

	"github.com/iliyamo/spaceshare/internal/model"
)

// UserStore covers user accounts. Username and email lookups are
// case-insensitive.
type UserStore interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser inserts without any uniqueness check.
	CreateUser(ctx context.Context, in model.UserFields) (*model.User, error)
	// RegisterUser inserts only when neither the username nor the email is
	// taken, atomically with respect to other writers.
	RegisterUser(ctx context.Context, in model.UserFields) (*model.User, error)
	UpdateUser(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error)
}

// ListingStore covers listings. Inactive (deleted) listings are visible
// through GetListing only.
type ListingStore interface {
	GetListing(ctx context.Context, id uint64) (*model.Listing, error)
	GetListingsByHost(ctx context.Context, hostID uint64) ([]model.Listing, error)
	// GetListings returns active listings matching f; nil f returns all of them.
	GetListings(ctx context.Context, f *model.ListingFilters) ([]model.Listing, error)
	CreateListing(ctx context.Context, in model.ListingFields) (*model.Listing, error)
	UpdateListing(ctx context.Context, id uint64, p model.ListingPatch) (*model.Listing, error)
	// DeleteListing marks the listing inactive. It reports false when the id
	// is unknown.
	DeleteListing(ctx context.Context, id uint64) (bool, error)
}

// BookingStore covers bookings.
type BookingStore interface {
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	GetBookingsByListing(ctx context.Context, listingID uint64) ([]model.Booking, error)
	GetBookingsByRenter(ctx context.Context, renterID uint64) ([]model.Booking, error)
	// GetBookingsByHost returns bookings on every active listing of hostID.
	GetBookingsByHost(ctx context.Context, hostID uint64) ([]model.Booking, error)
	CreateBooking(ctx context.Context, in model.BookingFields) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error)
}

// ReviewStore covers reviews. The list queries return public reviews only.
type ReviewStore interface {
	GetReview(ctx context.Context, id uint64) (*model.Review, error)
	GetReviewsByListing(ctx context.Context, listingID uint64) ([]model.Review, error)
	// GetReviewsByUser returns reviews written about userID.
	GetReviewsByUser(ctx context.Context, userID uint64) ([]model.Review, error)
	CreateReview(ctx context.Context, in model.ReviewFields) (*model.Review, error)
}

// MessageStore covers direct messages.
type MessageStore interface {
	GetMessage(ctx context.Context, id uint64) (*model.Message, error)
	// GetMessagesBetweenUsers returns the conversation oldest first.
	GetMessagesBetweenUsers(ctx context.Context, userA, userB uint64) ([]model.Message, error)
	// GetMessagesByUser returns every message sent or received, newest first.
	GetMessagesByUser(ctx context.Context, userID uint64) ([]model.Message, error)
	CreateMessage(ctx context.Context, in model.MessageFields) (*model.Message, error)
	MarkMessageAsRead(ctx context.Context, id uint64) (*model.Message, error)
}

// Store is the only seam between the HTTP layer and persistence.
type Store interface {
	UserStore
	ListingStore
	BookingStore
	ReviewStore
	MessageStore
}
