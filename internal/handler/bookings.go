package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/queue"
	"github.com/iliyamo/spaceshare/internal/repository"
)

// BookingHandler serves bookings. The platform fee is always derived from
// the total here; clients cannot set it.
type BookingHandler struct {
	Deps
}

func NewBookingHandler(d Deps) *BookingHandler { return &BookingHandler{Deps: d} }

// ----- DTOs -----

type bookingReq struct {
	ListingID     uint64              `json:"listingId" validate:"required"`
	RenterID      uint64              `json:"renterId" validate:"required"`
	StartDate     time.Time           `json:"startDate" validate:"required"`
	EndDate       *time.Time          `json:"endDate"`
	TotalPrice    int64               `json:"totalPrice" validate:"required,gt=0"`
	Status        model.BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded"`
}

type bookingPatchReq struct {
	ListingID     *uint64              `json:"listingId" validate:"omitempty,gt=0"`
	RenterID      *uint64              `json:"renterId" validate:"omitempty,gt=0"`
	StartDate     *time.Time           `json:"startDate"`
	EndDate       *time.Time           `json:"endDate"`
	TotalPrice    *int64               `json:"totalPrice" validate:"omitempty,gt=0"`
	Status        *model.BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus *model.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded"`
}

func bookingEvent(b *model.Booking, at string) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:     b.ID,
		ListingID:     b.ListingID,
		RenterID:      b.RenterID,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalPrice:    b.TotalPrice,
		PlatformFee:   b.PlatformFee,
		OccurredAt:    at,
	}
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	b, err := h.Store.GetBooking(ctx, id)
	if err != nil {
		return h.fail(c, err, "get booking")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) ByListing(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	bs, err := h.Store.GetBookingsByListing(ctx, id)
	if err != nil {
		return h.fail(c, err, "get listing bookings")
	}
	return c.JSON(http.StatusOK, bs)
}

func (h *BookingHandler) ByRenter(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	bs, err := h.Store.GetBookingsByRenter(ctx, id)
	if err != nil {
		return h.fail(c, err, "get renter bookings")
	}
	return c.JSON(http.StatusOK, bs)
}

// ByHost returns bookings on any active listing of the host.
func (h *BookingHandler) ByHost(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	bs, err := h.Store.GetBookingsByHost(ctx, id)
	if err != nil {
		return h.fail(c, err, "get host bookings")
	}
	return c.JSON(http.StatusOK, bs)
}

// Create books an active listing. status and paymentStatus default to
// pending.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return invalidField(c, "endDate", "gtfield")
	}
	if req.Status == "" {
		req.Status = model.BookingPending
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = model.PaymentPending
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	l, err := h.Store.GetListing(ctx, req.ListingID)
	if errors.Is(err, repository.ErrNotFound) {
		return missing(c, "listing")
	}
	if err != nil {
		return h.fail(c, err, "get listing")
	}
	if !l.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing is not available"})
	}
	name, err := missingRef(ctx, userRef(h.Store, "renter", req.RenterID))
	if err != nil {
		return h.fail(c, err, "check renter")
	}
	if name != "" {
		return missing(c, name)
	}

	b, err := h.Store.CreateBooking(ctx, model.BookingFields{
		ListingID:     req.ListingID,
		RenterID:      req.RenterID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalPrice:    req.TotalPrice,
		PlatformFee:   model.PlatformFee(req.TotalPrice),
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return h.fail(c, err, "create booking")
	}
	h.publish(c, queue.BookingCreated, bookingEvent(b, h.now()))
	return c.JSON(http.StatusCreated, b)
}

// Update applies a partial update. A new totalPrice recomputes the fee. The
// merged booking must still end after it starts, and it can only move onto
// an active listing.
func (h *BookingHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req bookingPatchReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	cur, err := h.Store.GetBooking(ctx, id)
	if err != nil {
		return h.fail(c, err, "get booking")
	}
	if req.ListingID != nil && *req.ListingID != cur.ListingID {
		l, err := h.Store.GetListing(ctx, *req.ListingID)
		if errors.Is(err, repository.ErrNotFound) {
			return missing(c, "listing")
		}
		if err != nil {
			return h.fail(c, err, "get listing")
		}
		if !l.IsActive {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing is not available"})
		}
	}
	if req.RenterID != nil {
		name, err := missingRef(ctx, userRef(h.Store, "renter", *req.RenterID))
		if err != nil {
			return h.fail(c, err, "check renter")
		}
		if name != "" {
			return missing(c, name)
		}
	}

	patch := model.BookingPatch{
		ListingID:     req.ListingID,
		RenterID:      req.RenterID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalPrice:    req.TotalPrice,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	}
	if req.TotalPrice != nil {
		fee := model.PlatformFee(*req.TotalPrice)
		patch.PlatformFee = &fee
	}

	merged := cur.Clone()
	patch.Apply(&merged)
	if merged.EndDate != nil && !merged.EndDate.After(merged.StartDate) {
		return invalidField(c, "endDate", "gtfield")
	}

	b, err := h.Store.UpdateBooking(ctx, id, patch)
	if err != nil {
		return h.fail(c, err, "update booking")
	}
	h.publish(c, queue.BookingUpdated, bookingEvent(b, h.now()))
	return c.JSON(http.StatusOK, b)
}
