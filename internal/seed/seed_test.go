package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/repository"
	"github.com/iliyamo/spaceshare/internal/utils"
)

func TestRunLoadsFixture(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemStore()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Run(ctx, s, bcrypt.MinCost, now))

	john, err := s.GetUserByUsername(ctx, "johndoe")
	require.NoError(t, err)
	require.True(t, john.IsHost)
	require.True(t, utils.VerifyPassword(john.PasswordHash, DemoPassword))

	jane, err := s.GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.False(t, jane.IsHost)

	listings, err := s.GetListingsByHost(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	bookings, err := s.GetBookingsByHost(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.Equal(t, int64(5400), bookings[0].PlatformFee)
	require.Equal(t, model.BookingConfirmed, bookings[0].Status)
	require.Equal(t, now.AddDate(0, 3, 0), *bookings[0].EndDate)

	reviews, err := s.GetReviewsByUser(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, 5, reviews[0].Rating)

	msgs, err := s.GetMessagesBetweenUsers(ctx, john.ID, jane.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, jane.ID, msgs[0].SenderID)
	require.Equal(t, john.ID, msgs[1].SenderID)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemStore()
	now := time.Now()

	require.NoError(t, Run(ctx, s, bcrypt.MinCost, now))
	require.NoError(t, Run(ctx, s, bcrypt.MinCost, now))

	_, err := s.GetUser(ctx, 3)
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}
