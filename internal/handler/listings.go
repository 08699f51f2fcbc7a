package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/queue"
)

// ListingHandler serves listing search and listing management.
type ListingHandler struct {
	Deps
}

func NewListingHandler(d Deps) *ListingHandler { return &ListingHandler{Deps: d} }

// ----- DTOs -----

type listingReq struct {
	HostID             uint64          `json:"hostId" validate:"required"`
	Title              string          `json:"title" validate:"required"`
	Description        string          `json:"description" validate:"required"`
	SpaceType          model.SpaceType `json:"spaceType" validate:"required,oneof=basement garage attic room shed other"`
	Size               int             `json:"size" validate:"required,gt=0"`
	PricePerMonth      int64           `json:"pricePerMonth" validate:"required,gt=0"`
	Address            string          `json:"address" validate:"required"`
	City               string          `json:"city" validate:"required"`
	State              string          `json:"state" validate:"required"`
	ZipCode            string          `json:"zipCode" validate:"required"`
	Country            string          `json:"country" validate:"required"`
	Latitude           float64         `json:"latitude" validate:"min=-90,max=90"`
	Longitude          float64         `json:"longitude" validate:"min=-180,max=180"`
	Images             []string        `json:"images" validate:"required,min=1,dive,required"`
	Features           []string        `json:"features" validate:"omitempty,dive,required"`
	AccessInstructions *string         `json:"accessInstructions"`
	AccessType         string          `json:"accessType" validate:"required"`
	AvailableFrom      time.Time       `json:"availableFrom" validate:"required"`
	AvailableTo        *time.Time      `json:"availableTo"`
	IsActive           *bool           `json:"isActive"`
}

type listingPatchReq struct {
	HostID             *uint64          `json:"hostId" validate:"omitempty,gt=0"`
	Title              *string          `json:"title" validate:"omitempty,min=1"`
	Description        *string          `json:"description" validate:"omitempty,min=1"`
	SpaceType          *model.SpaceType `json:"spaceType" validate:"omitempty,oneof=basement garage attic room shed other"`
	Size               *int             `json:"size" validate:"omitempty,gt=0"`
	PricePerMonth      *int64           `json:"pricePerMonth" validate:"omitempty,gt=0"`
	Address            *string          `json:"address" validate:"omitempty,min=1"`
	City               *string          `json:"city" validate:"omitempty,min=1"`
	State              *string          `json:"state" validate:"omitempty,min=1"`
	ZipCode            *string          `json:"zipCode" validate:"omitempty,min=1"`
	Country            *string          `json:"country" validate:"omitempty,min=1"`
	Latitude           *float64         `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude          *float64         `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Images             []string         `json:"images" validate:"omitempty,min=1,dive,required"`
	Features           []string         `json:"features" validate:"omitempty,dive,required"`
	AccessInstructions *string          `json:"accessInstructions"`
	AccessType         *string          `json:"accessType" validate:"omitempty,min=1"`
	AvailableFrom      *time.Time       `json:"availableFrom"`
	AvailableTo        *time.Time       `json:"availableTo"`
	IsActive           *bool            `json:"isActive"`
}

func (r listingPatchReq) patch() model.ListingPatch {
	return model.ListingPatch{
		HostID:             r.HostID,
		Title:              r.Title,
		Description:        r.Description,
		SpaceType:          r.SpaceType,
		Size:               r.Size,
		PricePerMonth:      r.PricePerMonth,
		Address:            r.Address,
		City:               r.City,
		State:              r.State,
		ZipCode:            r.ZipCode,
		Country:            r.Country,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Images:             r.Images,
		Features:           r.Features,
		AccessInstructions: r.AccessInstructions,
		AccessType:         r.AccessType,
		AvailableFrom:      r.AvailableFrom,
		AvailableTo:        r.AvailableTo,
		IsActive:           r.IsActive,
	}
}

func listingEvent(l *model.Listing, at string) queue.ListingEvent {
	return queue.ListingEvent{
		ListingID:     l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		City:          l.City,
		PricePerMonth: l.PricePerMonth,
		OccurredAt:    at,
	}
}

// queryError names the search parameter that failed to parse.
type queryError struct{ param string }

func (e *queryError) Error() string { return "invalid " + e.param }

// parseListingFilters reads the search query once. It returns nil when no
// parameter is present and a *queryError for a malformed number.
func parseListingFilters(c echo.Context) (*model.ListingFilters, error) {
	var f model.ListingFilters
	f.Location = strings.TrimSpace(c.QueryParam("location"))
	f.SpaceType = model.SpaceType(strings.TrimSpace(c.QueryParam("spaceType")))

	ints := []struct {
		name string
		dst  **int64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}}
	for _, p := range ints {
		if v := strings.TrimSpace(c.QueryParam(p.name)); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, &queryError{p.name}
			}
			*p.dst = &n
		}
	}

	sizes := []struct {
		name string
		dst  **int
	}{{"minSize", &f.MinSize}, {"maxSize", &f.MaxSize}}
	for _, p := range sizes {
		if v := strings.TrimSpace(c.QueryParam(p.name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, &queryError{p.name}
			}
			*p.dst = &n
		}
	}

	floats := []struct {
		name string
		dst  **float64
	}{{"latitude", &f.Latitude}, {"longitude", &f.Longitude}, {"radius", &f.Radius}}
	for _, p := range floats {
		if v := strings.TrimSpace(c.QueryParam(p.name)); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, &queryError{p.name}
			}
			*p.dst = &x
		}
	}

	if f.IsZero() {
		return nil, nil
	}
	return &f, nil
}

// Search lists active listings matching the query parameters location,
// spaceType, minPrice, maxPrice, minSize, maxSize, latitude, longitude and
// radius (miles).
func (h *ListingHandler) Search(c echo.Context) error {
	f, err := parseListingFilters(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	ls, err := h.Store.GetListings(ctx, f)
	if err != nil {
		return h.fail(c, err, "search listings")
	}
	return c.JSON(http.StatusOK, ls)
}

// Get returns a listing by id, including deleted ones.
func (h *ListingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	l, err := h.Store.GetListing(ctx, id)
	if err != nil {
		return h.fail(c, err, "get listing")
	}
	return c.JSON(http.StatusOK, l)
}

// Create stores a new listing. isActive defaults to true.
func (h *ListingHandler) Create(c echo.Context) error {
	var req listingReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.AvailableTo != nil && req.AvailableTo.Before(req.AvailableFrom) {
		return invalidField(c, "availableTo", "gtefield")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if name, err := missingRef(ctx, userRef(h.Store, "host", req.HostID)); err != nil || name != "" {
		if err != nil {
			return h.fail(c, err, "check host")
		}
		return missing(c, name)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	l, err := h.Store.CreateListing(ctx, model.ListingFields{
		HostID:             req.HostID,
		Title:              req.Title,
		Description:        req.Description,
		SpaceType:          req.SpaceType,
		Size:               req.Size,
		PricePerMonth:      req.PricePerMonth,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		Country:            req.Country,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Images:             req.Images,
		Features:           req.Features,
		AccessInstructions: req.AccessInstructions,
		AccessType:         req.AccessType,
		AvailableFrom:      req.AvailableFrom,
		AvailableTo:        req.AvailableTo,
		IsActive:           active,
	})
	if err != nil {
		return h.fail(c, err, "create listing")
	}
	h.publish(c, queue.ListingCreated, listingEvent(l, h.now()))
	return c.JSON(http.StatusCreated, l)
}

// Update applies a partial update. The merged availability window must not
// end before it starts.
func (h *ListingHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req listingPatchReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if req.HostID != nil {
		if name, err := missingRef(ctx, userRef(h.Store, "host", *req.HostID)); err != nil || name != "" {
			if err != nil {
				return h.fail(c, err, "check host")
			}
			return missing(c, name)
		}
	}

	cur, err := h.Store.GetListing(ctx, id)
	if err != nil {
		return h.fail(c, err, "get listing")
	}
	patch := req.patch()
	merged := cur.Clone()
	patch.Apply(&merged)
	if merged.AvailableTo != nil && merged.AvailableTo.Before(merged.AvailableFrom) {
		return invalidField(c, "availableTo", "gtefield")
	}

	l, err := h.Store.UpdateListing(ctx, id, patch)
	if err != nil {
		return h.fail(c, err, "update listing")
	}
	return c.JSON(http.StatusOK, l)
}

// Delete soft-deletes a listing.
func (h *ListingHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	deleted, err := h.Store.DeleteListing(ctx, id)
	if err != nil {
		return h.fail(c, err, "delete listing")
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}
	if l, err := h.Store.GetListing(ctx, id); err == nil {
		h.publish(c, queue.ListingDeleted, listingEvent(l, h.now()))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing deleted"})
}
