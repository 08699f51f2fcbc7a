package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/spaceshare/internal/model"
)

const bookingColumns = `id, listing_id, renter_id, start_date, end_date, total_price, platform_fee,
	status, payment_status, created_at`

func scanBooking(row rowScanner) (*model.Booking, error) {
	var (
		b       model.Booking
		endDate sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.ListingID, &b.RenterID, &b.StartDate, &endDate, &b.TotalPrice,
		&b.PlatformFee, &b.Status, &b.PaymentStatus, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.EndDate = timePtr(endDate)
	return &b, nil
}

func (s *SQLStore) queryBookings(ctx context.Context, cond string, args ...any) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE "+cond+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *SQLStore) GetBookingsByListing(ctx context.Context, listingID uint64) ([]model.Booking, error) {
	return s.queryBookings(ctx, "listing_id = ?", listingID)
}

func (s *SQLStore) GetBookingsByRenter(ctx context.Context, renterID uint64) ([]model.Booking, error) {
	return s.queryBookings(ctx, "renter_id = ?", renterID)
}

// GetBookingsByHost joins through the host's active listings on every call.
func (s *SQLStore) GetBookingsByHost(ctx context.Context, hostID uint64) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		"listing_id IN (SELECT id FROM listings WHERE host_id = ? AND is_active = TRUE)", hostID)
}

func (s *SQLStore) CreateBooking(ctx context.Context, in model.BookingFields) (*model.Booking, error) {
	b := model.Booking{BookingFields: in, CreatedAt: s.now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (listing_id, renter_id, start_date, end_date, total_price, platform_fee,
		 status, payment_status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ListingID, in.RenterID, in.StartDate.UTC(), nullTime(in.EndDate), in.TotalPrice, in.PlatformFee,
		string(in.Status), string(in.PaymentStatus), b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.ID, err = lastID(res); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLStore) UpdateBooking(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error) {
	var out *model.Booking
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b, err := scanBooking(tx.QueryRowContext(ctx,
			"SELECT "+bookingColumns+" FROM bookings WHERE id = ? FOR UPDATE", id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		p.Apply(b)
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET listing_id = ?, renter_id = ?, start_date = ?, end_date = ?,
			 total_price = ?, platform_fee = ?, status = ?, payment_status = ? WHERE id = ?`,
			b.ListingID, b.RenterID, b.StartDate.UTC(), nullTime(b.EndDate),
			b.TotalPrice, b.PlatformFee, string(b.Status), string(b.PaymentStatus), id); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}
