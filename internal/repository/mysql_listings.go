package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/spaceshare/internal/model"
)

const listingColumns = `id, host_id, title, description, space_type, size, price_per_month,
	address, city, state, zip_code, country, latitude, longitude, images, features,
	access_instructions, access_type, available_from, available_to, is_active, created_at`

func scanListing(row rowScanner) (*model.Listing, error) {
	var (
		l                  model.Listing
		images, features   []byte
		accessInstructions sql.NullString
		availableTo        sql.NullTime
	)
	if err := row.Scan(&l.ID, &l.HostID, &l.Title, &l.Description, &l.SpaceType, &l.Size, &l.PricePerMonth,
		&l.Address, &l.City, &l.State, &l.ZipCode, &l.Country, &l.Latitude, &l.Longitude, &images, &features,
		&accessInstructions, &l.AccessType, &l.AvailableFrom, &availableTo, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &l.Images); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &l.Features); err != nil {
			return nil, err
		}
	}
	l.AccessInstructions = strPtr(accessInstructions)
	l.AvailableTo = timePtr(availableTo)
	return &l, nil
}

func scanListings(rows *sql.Rows) ([]model.Listing, error) {
	defer rows.Close()
	out := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// listingJSON encodes the list columns. A nil features slice stays NULL.
func listingJSON(l *model.ListingFields) (images []byte, features []byte, err error) {
	imgs := l.Images
	if imgs == nil {
		imgs = []string{}
	}
	if images, err = json.Marshal(imgs); err != nil {
		return nil, nil, err
	}
	if l.Features != nil {
		if features, err = json.Marshal(l.Features); err != nil {
			return nil, nil, err
		}
	}
	return images, features, nil
}

func (s *SQLStore) GetListing(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := scanListing(s.db.QueryRowContext(ctx, "SELECT "+listingColumns+" FROM listings WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	return l, err
}

func (s *SQLStore) GetListingsByHost(ctx context.Context, hostID uint64) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE host_id = ? AND is_active = TRUE ORDER BY id", hostID)
	if err != nil {
		return nil, err
	}
	return scanListings(rows)
}

// listingSearchSQL turns the scalar predicates of f into a WHERE clause.
// The radius predicate is applied afterwards in Go so that both stores use
// the same haversine implementation.
func listingSearchSQL(f *model.ListingFilters) (string, []any) {
	where := []string{"is_active = TRUE"}
	args := []any{}

	if f != nil {
		if f.SpaceType != "" {
			where = append(where, "space_type = ?")
			args = append(args, string(f.SpaceType))
		}
		if f.MinPrice != nil {
			where = append(where, "price_per_month >= ?")
			args = append(args, *f.MinPrice)
		}
		if f.MaxPrice != nil {
			where = append(where, "price_per_month <= ?")
			args = append(args, *f.MaxPrice)
		}
		if f.MinSize != nil {
			where = append(where, "size >= ?")
			args = append(args, *f.MinSize)
		}
		if f.MaxSize != nil {
			where = append(where, "size <= ?")
			args = append(args, *f.MaxSize)
		}
		if f.Location != "" {
			where = append(where, "(LOWER(city) LIKE ? OR LOWER(state) LIKE ? OR LOWER(zip_code) LIKE ? OR LOWER(address) LIKE ?)")
			like := "%" + escapeLike(strings.ToLower(f.Location)) + "%"
			args = append(args, like, like, like, like)
		}
	}

	return "SELECT " + listingColumns + " FROM listings WHERE " + strings.Join(where, " AND ") + " ORDER BY id", args
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *SQLStore) GetListings(ctx context.Context, f *model.ListingFilters) ([]model.Listing, error) {
	q, args := listingSearchSQL(f)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	all, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for i := range all {
		if withinRadius(&all[i], f) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *SQLStore) CreateListing(ctx context.Context, in model.ListingFields) (*model.Listing, error) {
	images, features, err := listingJSON(&in)
	if err != nil {
		return nil, err
	}
	l := model.Listing{ListingFields: in, CreatedAt: s.now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO listings (host_id, title, description, space_type, size, price_per_month,
		 address, city, state, zip_code, country, latitude, longitude, images, features,
		 access_instructions, access_type, available_from, available_to, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.HostID, in.Title, in.Description, string(in.SpaceType), in.Size, in.PricePerMonth,
		in.Address, in.City, in.State, in.ZipCode, in.Country, in.Latitude, in.Longitude, images, features,
		nullString(in.AccessInstructions), in.AccessType, in.AvailableFrom.UTC(), nullTime(in.AvailableTo),
		in.IsActive, l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if l.ID, err = lastID(res); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLStore) UpdateListing(ctx context.Context, id uint64, p model.ListingPatch) (*model.Listing, error) {
	var out *model.Listing
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		l, err := scanListing(tx.QueryRowContext(ctx,
			"SELECT "+listingColumns+" FROM listings WHERE id = ? FOR UPDATE", id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListingNotFound
		}
		if err != nil {
			return err
		}
		p.Apply(l)
		images, features, err := listingJSON(&l.ListingFields)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE listings SET host_id = ?, title = ?, description = ?, space_type = ?, size = ?,
			 price_per_month = ?, address = ?, city = ?, state = ?, zip_code = ?, country = ?,
			 latitude = ?, longitude = ?, images = ?, features = ?, access_instructions = ?,
			 access_type = ?, available_from = ?, available_to = ?, is_active = ?
			 WHERE id = ?`,
			l.HostID, l.Title, l.Description, string(l.SpaceType), l.Size,
			l.PricePerMonth, l.Address, l.City, l.State, l.ZipCode, l.Country,
			l.Latitude, l.Longitude, images, features, nullString(l.AccessInstructions),
			l.AccessType, l.AvailableFrom.UTC(), nullTime(l.AvailableTo), l.IsActive,
			id); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

func (s *SQLStore) DeleteListing(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM listings WHERE id = ?)", id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE listings SET is_active = FALSE WHERE id = ?", id); err != nil {
		return false, err
	}
	return true, nil
}
