package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/spaceshare/internal/model"
)

const reviewColumns = "id, booking_id, reviewer_id, reviewed_id, listing_id, rating, comment, is_public, created_at"

func scanReview(row rowScanner) (*model.Review, error) {
	var (
		r         model.Review
		listingID sql.NullInt64
		comment   sql.NullString
	)
	if err := row.Scan(&r.ID, &r.BookingID, &r.ReviewerID, &r.ReviewedID, &listingID,
		&r.Rating, &comment, &r.IsPublic, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.ListingID = idPtr(listingID)
	r.Comment = strPtr(comment)
	return &r, nil
}

func (s *SQLStore) publicReviews(ctx context.Context, cond string, arg any) ([]model.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE is_public = TRUE AND "+cond+" ORDER BY id", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetReview(ctx context.Context, id uint64) (*model.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return r, err
}

func (s *SQLStore) GetReviewsByListing(ctx context.Context, listingID uint64) ([]model.Review, error) {
	return s.publicReviews(ctx, "listing_id = ?", listingID)
}

func (s *SQLStore) GetReviewsByUser(ctx context.Context, userID uint64) ([]model.Review, error) {
	return s.publicReviews(ctx, "reviewed_id = ?", userID)
}

func (s *SQLStore) CreateReview(ctx context.Context, in model.ReviewFields) (*model.Review, error) {
	r := model.Review{ReviewFields: in, CreatedAt: s.now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (booking_id, reviewer_id, reviewed_id, listing_id, rating, comment, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.BookingID, in.ReviewerID, in.ReviewedID, nullID(in.ListingID), in.Rating,
		nullString(in.Comment), in.IsPublic, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if r.ID, err = lastID(res); err != nil {
		return nil, err
	}
	return &r, nil
}
