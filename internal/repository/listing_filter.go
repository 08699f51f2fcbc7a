package repository

import (
	"strings"

	"github.com/iliyamo/spaceshare/internal/geo"
	"github.com/iliyamo/spaceshare/internal/model"
)

// matchesListing applies every set predicate of f to l. Inactive listings
// never match.
func matchesListing(l *model.Listing, f *model.ListingFilters) bool {
	if !l.IsActive {
		return false
	}
	if f == nil {
		return true
	}
	if f.SpaceType != "" && l.SpaceType != f.SpaceType {
		return false
	}
	if f.MinPrice != nil && l.PricePerMonth < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.PricePerMonth > *f.MaxPrice {
		return false
	}
	if f.MinSize != nil && l.Size < *f.MinSize {
		return false
	}
	if f.MaxSize != nil && l.Size > *f.MaxSize {
		return false
	}
	if f.Location != "" && !matchesLocation(l, f.Location) {
		return false
	}
	return withinRadius(l, f)
}

// matchesLocation is a case-insensitive substring match against any of the
// address fields.
func matchesLocation(l *model.Listing, location string) bool {
	q := strings.ToLower(location)
	for _, field := range []string{l.City, l.State, l.ZipCode, l.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// withinRadius is true when f has no complete radius filter.
func withinRadius(l *model.Listing, f *model.ListingFilters) bool {
	if f == nil || !f.HasRadius() {
		return true
	}
	return geo.WithinRadius(*f.Latitude, *f.Longitude, l.Latitude, l.Longitude, *f.Radius)
}
