package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/model"
	"github.com/iliyamo/spaceshare/internal/queue"
)

// ReviewHandler serves reviews. Reviews cannot be edited once written.
type ReviewHandler struct {
	Deps
}

func NewReviewHandler(d Deps) *ReviewHandler { return &ReviewHandler{Deps: d} }

type reviewReq struct {
	BookingID  uint64  `json:"bookingId" validate:"required"`
	ReviewerID uint64  `json:"reviewerId" validate:"required"`
	ReviewedID uint64  `json:"reviewedId" validate:"required"`
	ListingID  *uint64 `json:"listingId" validate:"omitempty,gt=0"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string `json:"comment"`
	IsPublic   *bool   `json:"isPublic"`
}

func (h *ReviewHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	r, err := h.Store.GetReview(ctx, id)
	if err != nil {
		return h.fail(c, err, "get review")
	}
	return c.JSON(http.StatusOK, r)
}

// ByListing returns the public reviews of a listing.
func (h *ReviewHandler) ByListing(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	rs, err := h.Store.GetReviewsByListing(ctx, id)
	if err != nil {
		return h.fail(c, err, "get listing reviews")
	}
	return c.JSON(http.StatusOK, rs)
}

// ByUser returns the public reviews written about a user.
func (h *ReviewHandler) ByUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	rs, err := h.Store.GetReviewsByUser(ctx, id)
	if err != nil {
		return h.fail(c, err, "get user reviews")
	}
	return c.JSON(http.StatusOK, rs)
}

// Create stores a review. isPublic defaults to true.
func (h *ReviewHandler) Create(c echo.Context) error {
	var req reviewReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	refs := []ref{
		bookingRef(h.Store, "booking", req.BookingID),
		userRef(h.Store, "reviewer", req.ReviewerID),
		userRef(h.Store, "reviewed user", req.ReviewedID),
	}
	if req.ListingID != nil {
		refs = append(refs, listingRef(h.Store, "listing", *req.ListingID))
	}
	name, err := missingRef(ctx, refs...)
	if err != nil {
		return h.fail(c, err, "check review references")
	}
	if name != "" {
		return missing(c, name)
	}

	public := true
	if req.IsPublic != nil {
		public = *req.IsPublic
	}
	r, err := h.Store.CreateReview(ctx, model.ReviewFields{
		BookingID:  req.BookingID,
		ReviewerID: req.ReviewerID,
		ReviewedID: req.ReviewedID,
		ListingID:  req.ListingID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsPublic:   public,
	})
	if err != nil {
		return h.fail(c, err, "create review")
	}
	h.publish(c, queue.ReviewCreated, queue.ReviewEvent{
		ReviewID:   r.ID,
		BookingID:  r.BookingID,
		ReviewerID: r.ReviewerID,
		ReviewedID: r.ReviewedID,
		Rating:     r.Rating,
		IsPublic:   r.IsPublic,
		OccurredAt: h.now(),
	})
	return c.JSON(http.StatusCreated, r)
}
