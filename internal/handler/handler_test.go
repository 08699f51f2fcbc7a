package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/spaceshare/internal/repository"
	"github.com/iliyamo/spaceshare/internal/validation"
)

// recorder keeps every published routing key.
type recorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *recorder) Publish(_ context.Context, key string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

type testAPI struct {
	e      *echo.Echo
	store  *repository.MemStore
	events *recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repository.NewMemStore()
	events := &recorder{}
	d := Deps{
		Store:   store,
		Events:  events,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout: time.Second,
		Now:     func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	}

	e := echo.New()
	e.Validator = validation.New()

	users := NewUserHandler(d, 4)
	e.POST("/api/users/register", users.Register)
	e.POST("/api/users/login", users.Login)
	e.GET("/api/users/:id", users.Get)
	e.PATCH("/api/users/:id", users.Update)
	e.GET("/api/users/:id/listings", users.Listings)

	listings := NewListingHandler(d)
	e.GET("/api/listings", listings.Search)
	e.GET("/api/listings/:id", listings.Get)
	e.POST("/api/listings", listings.Create)
	e.PATCH("/api/listings/:id", listings.Update)
	e.DELETE("/api/listings/:id", listings.Delete)

	bookings := NewBookingHandler(d)
	e.GET("/api/bookings/:id", bookings.Get)
	e.GET("/api/bookings/listing/:id", bookings.ByListing)
	e.GET("/api/bookings/renter/:id", bookings.ByRenter)
	e.GET("/api/bookings/host/:id", bookings.ByHost)
	e.POST("/api/bookings", bookings.Create)
	e.PATCH("/api/bookings/:id", bookings.Update)

	reviews := NewReviewHandler(d)
	e.GET("/api/reviews/:id", reviews.Get)
	e.GET("/api/reviews/listing/:id", reviews.ByListing)
	e.GET("/api/reviews/user/:id", reviews.ByUser)
	e.POST("/api/reviews", reviews.Create)

	messages := NewMessageHandler(d)
	e.GET("/api/messages/:id", messages.ByUser)
	e.GET("/api/messages/:id/:otherId", messages.Conversation)
	e.POST("/api/messages", messages.Create)
	e.PATCH("/api/messages/:id/read", messages.MarkRead)

	return &testAPI{e: e, store: store, events: events}
}

// call sends body as JSON and decodes the response into out when non-nil.
func (a *testAPI) call(t *testing.T, method, target, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type errBody struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details"`
}

const (
	johnJSON = `{"username":"johndoe","email":"john@example.com","password":"password123",
		"confirmPassword":"password123","fullName":"John Doe","isHost":true}`
	janeJSON = `{"username":"janedoe","email":"jane@example.com","password":"password123",
		"confirmPassword":"password123","fullName":"Jane Doe"}`
	basementJSON = `{"hostId":1,"title":"Dry basement","description":"Clean and dry",
		"spaceType":"basement","size":200,"pricePerMonth":12000,"address":"1 Main St",
		"city":"Brooklyn","state":"NY","zipCode":"11201","country":"USA",
		"latitude":40.6782,"longitude":-73.9442,"images":["https://img/1.jpg"],
		"accessType":"24/7","availableFrom":"2024-01-01T00:00:00Z"}`
	garageJSON = `{"hostId":1,"title":"Garage bay","description":"Secure garage",
		"spaceType":"garage","size":150,"pricePerMonth":9500,"address":"9 Pine St",
		"city":"Seattle","state":"WA","zipCode":"98101","country":"USA",
		"latitude":47.6062,"longitude":-122.3321,"images":["https://img/2.jpg"],
		"accessType":"by appointment","availableFrom":"2024-01-01T00:00:00Z"}`
)

// seedBasics registers john (1) and jane (2) and creates listings 1 and 2.
func (a *testAPI) seedBasics(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/users/register", johnJSON, nil))
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/users/register", janeJSON, nil))
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/listings", basementJSON, nil))
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/listings", garageJSON, nil))
}
