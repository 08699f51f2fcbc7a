// Package seed loads the demo fixture: two users, two listings, one
// booking, one review and a three-message conversation.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/repository"
	"github.com/iliyamo/spaceshare/internal/utils"
)

// DemoPassword is the password of both demo accounts.
const DemoPassword = "password123"

// Run inserts the fixture through s, users first, then listings, bookings,
// and finally the review and messages that reference them. It is a no-op
// when the demo host already exists, so it is safe against a persistent
// store that was seeded by an earlier run.
func Run(ctx context.Context, s repository.Store, bcryptCost int, now time.Time) error {
	if _, err := s.GetUserByUsername(ctx, "johndoe"); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("seed: lookup: %w", err)
	}

	hash, err := utils.HashPassword(DemoPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("seed: hash: %w", err)
	}

	john, err := s.CreateUser(ctx, model.UserFields{
		Username:     "johndoe",
		Email:        "john@example.com",
		PasswordHash: hash,
		FullName:     "John Doe",
		Bio:          strp("I'm a host with extra space in my home."),
		Avatar:       strp("https://randomuser.me/api/portraits/men/1.jpg"),
		IsHost:       true,
	})
	if err != nil {
		return fmt.Errorf("seed: user: %w", err)
	}
	jane, err := s.CreateUser(ctx, model.UserFields{
		Username:     "janedoe",
		Email:        "jane@example.com",
		PasswordHash: hash,
		FullName:     "Jane Doe",
		Bio:          strp("Looking for affordable storage solutions."),
		Avatar:       strp("https://randomuser.me/api/portraits/women/1.jpg"),
	})
	if err != nil {
		return fmt.Errorf("seed: user: %w", err)
	}

	basement, err := s.CreateListing(ctx, model.ListingFields{
		HostID:        john.ID,
		Title:         "Spacious Basement Storage",
		Description:   "Clean, dry basement space perfect for storing furniture, boxes, or seasonal items.",
		SpaceType:     model.SpaceBasement,
		Size:          200,
		PricePerMonth: 12000,
		Address:       "123 Main St",
		City:          "Brooklyn",
		State:         "NY",
		ZipCode:       "11201",
		Country:       "USA",
		Latitude:      40.7128,
		Longitude:     -74.0060,
		Images: []string{
			"https://images.unsplash.com/photo-1600607686527-6fb886090705?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
		},
		Features:           []string{"Clean & Dry", "24/7 Access", "Climate Controlled"},
		AccessInstructions: strp("Enter through the side door. Keypad code will be provided after booking."),
		AccessType:         "24/7",
		AvailableFrom:      now,
		IsActive:           true,
	})
	if err != nil {
		return fmt.Errorf("seed: listing: %w", err)
	}
	if _, err := s.CreateListing(ctx, model.ListingFields{
		HostID:        john.ID,
		Title:         "Secure Garage Storage",
		Description:   "Clean garage space with security cameras and drive-up access.",
		SpaceType:     model.SpaceGarage,
		Size:          150,
		PricePerMonth: 9500,
		Address:       "456 Oak St",
		City:          "Seattle",
		State:         "WA",
		ZipCode:       "98101",
		Country:       "USA",
		Latitude:      47.6062,
		Longitude:     -122.3321,
		Images: []string{
			"https://images.unsplash.com/photo-1558036117-15d82a90b9b1?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
		},
		Features:           []string{"Security Camera", "Drive-up Access", "Locked Garage"},
		AccessInstructions: strp("Garage door opener will be provided upon booking confirmation."),
		AccessType:         "24/7",
		AvailableFrom:      now,
		IsActive:           true,
	}); err != nil {
		return fmt.Errorf("seed: listing: %w", err)
	}

	end := now.AddDate(0, 3, 0)
	const total = 36000
	booking, err := s.CreateBooking(ctx, model.BookingFields{
		ListingID:     basement.ID,
		RenterID:      jane.ID,
		StartDate:     now,
		EndDate:       &end,
		TotalPrice:    total,
		PlatformFee:   model.PlatformFee(total),
		Status:        model.BookingConfirmed,
		PaymentStatus: model.PaymentPaid,
	})
	if err != nil {
		return fmt.Errorf("seed: booking: %w", err)
	}

	if _, err := s.CreateReview(ctx, model.ReviewFields{
		BookingID:  booking.ID,
		ReviewerID: jane.ID,
		ReviewedID: john.ID,
		ListingID:  &basement.ID,
		Rating:     5,
		Comment:    strp("Great storage space! Clean, dry, and secure. John was very helpful and accommodating."),
		IsPublic:   true,
	}); err != nil {
		return fmt.Errorf("seed: review: %w", err)
	}

	conversation := []struct {
		from, to uint64
		text     string
	}{
		{jane.ID, john.ID, "Hi John, I'm interested in your basement storage space. Is it still available?"},
		{john.ID, jane.ID, "Hi Jane, yes it's still available! When would you like to start?"},
		{jane.ID, john.ID, "I'd like to start next week if possible. How do I access the space?"},
	}
	for _, m := range conversation {
		if _, err := s.CreateMessage(ctx, model.MessageFields{
			SenderID:   m.from,
			ReceiverID: m.to,
			ListingID:  &basement.ID,
			BookingID:  &booking.ID,
			Message:    m.text,
			IsRead:     true,
		}); err != nil {
			return fmt.Errorf("seed: message: %w", err)
		}
	}
	return nil
}

func strp(s string) *string { return &s }
