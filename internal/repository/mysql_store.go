package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/spaceshare/internal/model"
)

var _ Store = (*SQLStore)(nil)

// SQLStore implements Store on MySQL. It honours the same contract as
// MemStore: soft deletes, public-only review lists and the message
// orderings. Timestamps are written in UTC with microsecond precision.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore wraps an open pool. Run database.Migrate first.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func nullID(p *uint64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}

func idPtr(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

func lastID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ----- users -----

const userColumns = "id, username, email, password_hash, full_name, bio, avatar, is_host, created_at"

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u           model.User
		bio, avatar sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&bio, &avatar, &u.IsHost, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Bio = strPtr(bio)
	u.Avatar = strPtr(avatar)
	return &u, nil
}

func (s *SQLStore) userWhere(ctx context.Context, q queryer, cond string, arg any) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+cond+" ORDER BY id LIMIT 1", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *SQLStore) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	return s.userWhere(ctx, s.db, "id = ?", id)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userWhere(ctx, s.db, "LOWER(username) = LOWER(?)", username)
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, s.db, "LOWER(email) = LOWER(?)", email)
}

func (s *SQLStore) CreateUser(ctx context.Context, in model.UserFields) (*model.User, error) {
	return s.insertUser(ctx, s.db, in)
}

func (s *SQLStore) insertUser(ctx context.Context, q queryer, in model.UserFields) (*model.User, error) {
	u := model.User{UserFields: in, CreatedAt: s.now()}
	res, err := q.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, bio, avatar, is_host, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Username, in.Email, in.PasswordHash, in.FullName,
		nullString(in.Bio), nullString(in.Avatar), in.IsHost, u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if u.ID, err = lastID(res); err != nil {
		return nil, err
	}
	return &u, nil
}

// registerLock serializes registrations across every process sharing the
// database.
const registerLock = "spaceshare.register_user"

// RegisterUser holds a MySQL named lock while it checks both identifiers
// and inserts, so concurrent registrations cannot race past the check.
func (s *SQLStore) RegisterUser(ctx context.Context, in model.UserFields) (*model.User, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 5)", registerLock).Scan(&got); err != nil {
		return nil, err
	}
	if !got.Valid || got.Int64 != 1 {
		return nil, fmt.Errorf("register user: lock %q not acquired", registerLock)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", registerLock)
	}()

	if _, err := s.userWhere(ctx, conn, "LOWER(username) = LOWER(?)", in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.userWhere(ctx, conn, "LOWER(email) = LOWER(?)", in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return s.insertUser(ctx, conn, in)
}

func (s *SQLStore) UpdateUser(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error) {
	var out *model.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ? FOR UPDATE", id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		p.Apply(u)
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET username = ?, email = ?, password_hash = ?, full_name = ?,
			 bio = ?, avatar = ?, is_host = ? WHERE id = ?`,
			u.Username, u.Email, u.PasswordHash, u.FullName,
			nullString(u.Bio), nullString(u.Avatar), u.IsHost, id); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}
