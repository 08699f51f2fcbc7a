package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/spaceshare/internal/model"
)

const messageColumns = "id, sender_id, receiver_id, listing_id, booking_id, message, is_read, created_at"

func scanMessage(row rowScanner) (*model.Message, error) {
	var (
		m                    model.Message
		listingID, bookingID sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &listingID, &bookingID,
		&m.Message, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.ListingID = idPtr(listingID)
	m.BookingID = idPtr(bookingID)
	return &m, nil
}

func (s *SQLStore) queryMessages(ctx context.Context, q string, args ...any) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetMessage(ctx context.Context, id uint64) (*model.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	return m, err
}

// GetMessagesBetweenUsers returns the transcript oldest first.
func (s *SQLStore) GetMessagesBetweenUsers(ctx context.Context, userA, userB uint64) ([]model.Message, error) {
	return s.queryMessages(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at ASC, id ASC`,
		userA, userB, userB, userA)
}

// GetMessagesByUser returns the inbox newest first.
func (s *SQLStore) GetMessagesByUser(ctx context.Context, userID uint64) ([]model.Message, error) {
	return s.queryMessages(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE sender_id = ? OR receiver_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID, userID)
}

func (s *SQLStore) CreateMessage(ctx context.Context, in model.MessageFields) (*model.Message, error) {
	m := model.Message{MessageFields: in, CreatedAt: s.now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, listing_id, booking_id, message, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.SenderID, in.ReceiverID, nullID(in.ListingID), nullID(in.BookingID), in.Message, in.IsRead, m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if m.ID, err = lastID(res); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLStore) MarkMessageAsRead(ctx context.Context, id uint64) (*model.Message, error) {
	if _, err := s.db.ExecContext(ctx, "UPDATE messages SET is_read = TRUE WHERE id = ?", id); err != nil {
		return nil, err
	}
	return s.GetMessage(ctx, id)
}
