package model

import "time"

// SpaceType classifies the kind of storage space a listing offers.
type SpaceType string

const (
	SpaceBasement SpaceType = "basement"
	SpaceGarage   SpaceType = "garage"
	SpaceAttic    SpaceType = "attic"
	SpaceRoom     SpaceType = "room"
	SpaceShed     SpaceType = "shed"
	SpaceOther    SpaceType = "other"
)

// SpaceTypes lists every accepted SpaceType in display order.
var SpaceTypes = []SpaceType{SpaceBasement, SpaceGarage, SpaceAttic, SpaceRoom, SpaceShed, SpaceOther}

// Valid reports whether t is one of SpaceTypes.
func (t SpaceType) Valid() bool {
	for _, s := range SpaceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ListingFields holds the caller-supplied attributes of a listing.
//
// Fields:
//
//	HostID        – owner of the space (users.id).
//	Size          – floor area in square feet.
//	PricePerMonth – monthly rent in cents.
//	Images        – ordered image URLs; the first one is the cover.
//	AccessType    – free text such as "24/7" or "by appointment".
//	IsActive      – false once the listing has been deleted.
type ListingFields struct {
	HostID             uint64     `json:"hostId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	SpaceType          SpaceType  `json:"spaceType"`
	Size               int        `json:"size"`
	PricePerMonth      int64      `json:"pricePerMonth"`
	Address            string     `json:"address"`
	City               string     `json:"city"`
	State              string     `json:"state"`
	ZipCode            string     `json:"zipCode"`
	Country            string     `json:"country"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	Images             []string   `json:"images"`
	Features           []string   `json:"features"`
	AccessInstructions *string    `json:"accessInstructions"`
	AccessType         string     `json:"accessType"`
	AvailableFrom      time.Time  `json:"availableFrom"`
	AvailableTo        *time.Time `json:"availableTo"`
	IsActive           bool       `json:"isActive"`
}

// Listing is a storage space offered for rent by a host.
type Listing struct {
	ID uint64 `json:"id"`
	ListingFields
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of l so stored state cannot be aliased.
func (l Listing) Clone() Listing {
	l.Images = cloneStrings(l.Images)
	l.Features = cloneStrings(l.Features)
	l.AccessInstructions = clonePtr(l.AccessInstructions)
	l.AvailableTo = clonePtr(l.AvailableTo)
	return l
}

// ListingPatch is a partial update of a listing. Nil fields are left
// untouched; a non-nil slice replaces the stored slice entirely.
type ListingPatch struct {
	HostID             *uint64
	Title              *string
	Description        *string
	SpaceType          *SpaceType
	Size               *int
	PricePerMonth      *int64
	Address            *string
	City               *string
	State              *string
	ZipCode            *string
	Country            *string
	Latitude           *float64
	Longitude          *float64
	Images             []string
	Features           []string
	AccessInstructions *string
	AccessType         *string
	AvailableFrom      *time.Time
	AvailableTo        *time.Time
	IsActive           *bool
}

// Apply merges the present fields of p onto l.
func (p ListingPatch) Apply(l *Listing) {
	setIf(&l.HostID, p.HostID)
	setIf(&l.Title, p.Title)
	setIf(&l.Description, p.Description)
	setIf(&l.SpaceType, p.SpaceType)
	setIf(&l.Size, p.Size)
	setIf(&l.PricePerMonth, p.PricePerMonth)
	setIf(&l.Address, p.Address)
	setIf(&l.City, p.City)
	setIf(&l.State, p.State)
	setIf(&l.ZipCode, p.ZipCode)
	setIf(&l.Country, p.Country)
	setIf(&l.Latitude, p.Latitude)
	setIf(&l.Longitude, p.Longitude)
	if p.Images != nil {
		l.Images = cloneStrings(p.Images)
	}
	if p.Features != nil {
		l.Features = cloneStrings(p.Features)
	}
	if p.AccessInstructions != nil {
		l.AccessInstructions = clonePtr(p.AccessInstructions)
	}
	setIf(&l.AccessType, p.AccessType)
	setIf(&l.AvailableFrom, p.AvailableFrom)
	if p.AvailableTo != nil {
		l.AvailableTo = clonePtr(p.AvailableTo)
	}
	setIf(&l.IsActive, p.IsActive)
}
