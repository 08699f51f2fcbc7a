// Package handler holds the REST handlers. All request parsing, validation
// and referential checks happen here; the store below trusts its input.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/queue"
	"github.com/iliyamo/spaceshare/internal/repository"
	"github.com/iliyamo/spaceshare/internal/validation"
)

// Deps bundles what every handler group needs.
type Deps struct {
	Store   repository.Store
	Events  queue.Publisher
	Log     *slog.Logger
	Timeout time.Duration    // per-request store deadline; 5s when zero
	Now     func() time.Time // event timestamps; time.Now when nil
}

func (d Deps) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	t := d.Timeout
	if t <= 0 {
		t = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), t)
}

func (d Deps) now() string {
	if d.Now != nil {
		return d.Now().UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// publish emits an event without failing the request. The publisher logs
// its own errors.
func (d Deps) publish(c echo.Context, key string, payload any) {
	if d.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
	defer cancel()
	_ = d.Events.Publish(ctx, key, payload)
}

// fail maps a store error to a response: not-found sentinels become 404,
// everything else is logged and hidden behind a 500.
func (d Deps) fail(c echo.Context, err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	d.Log.Error(op+" failed",
		"err", err,
		"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"path", c.Path(),
		"method", c.Request().Method,
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
}

// ref is one foreign key to verify before a write.
type ref struct {
	name  string
	check func(ctx context.Context) error
}

func userRef(s repository.Store, name string, id uint64) ref {
	return ref{name, func(ctx context.Context) error { _, err := s.GetUser(ctx, id); return err }}
}

func listingRef(s repository.Store, name string, id uint64) ref {
	return ref{name, func(ctx context.Context) error { _, err := s.GetListing(ctx, id); return err }}
}

func bookingRef(s repository.Store, name string, id uint64) ref {
	return ref{name, func(ctx context.Context) error { _, err := s.GetBooking(ctx, id); return err }}
}

// missingRef returns the name of the first reference that does not resolve,
// or "" when all do.
func missingRef(ctx context.Context, refs ...ref) (string, error) {
	for _, r := range refs {
		err := r.check(ctx)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrNotFound):
			return r.name, nil
		default:
			return "", err
		}
	}
	return "", nil
}

func missing(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": name + " does not exist"})
}

// bind decodes and validates the request body into req. On failure it has
// already written the 400 response and returns false.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}

func invalid(c echo.Context, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid data", "details": verr.Fields})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid data"})
}

func invalidField(c echo.Context, field, rule string) error {
	return invalid(c, &validation.Error{Fields: []validation.FieldError{{Field: field, Rule: rule}}})
}

// pathID parses a positive decimal id from the named path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}
