package model

// ListingFilters narrows a listing search. Every field is optional; set
// fields are combined with AND. Empty strings and nil pointers mean "not
// provided". The radius filter applies only when Latitude, Longitude and
// Radius are all set.
type ListingFilters struct {
	Location  string    // substring of city, state, zip code or address
	SpaceType SpaceType // exact match
	MinPrice  *int64    // cents, inclusive
	MaxPrice  *int64    // cents, inclusive
	MinSize   *int      // square feet, inclusive
	MaxSize   *int      // square feet, inclusive
	Latitude  *float64
	Longitude *float64
	Radius    *float64 // miles
}

// HasRadius reports whether the geospatial filter is fully specified.
func (f ListingFilters) HasRadius() bool {
	return f.Latitude != nil && f.Longitude != nil && f.Radius != nil
}

// IsZero reports whether no filter is set.
func (f ListingFilters) IsZero() bool {
	return f.Location == "" && f.SpaceType == "" &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinSize == nil && f.MaxSize == nil &&
		f.Latitude == nil && f.Longitude == nil && f.Radius == nil
}
