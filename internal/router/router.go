// Package router maps URLs to handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spaceshare/internal/handler"
	"github.com/iliyamo/spaceshare/internal/middleware"
)

// Handlers groups every handler the API exposes.
type Handlers struct {
	Health   *handler.HealthHandler
	Users    *handler.UserHandler
	Listings *handler.ListingHandler
	Bookings *handler.BookingHandler
	Reviews  *handler.ReviewHandler
	Messages *handler.MessageHandler
}

// RegisterRoutes registers /healthz and the /api surface. Listing and review
// reads go through the response cache; every successful write under /api
// invalidates it. A nil cache disables both.
func RegisterRoutes(e *echo.Echo, h Handlers, cache *middleware.ResponseCache) {
	e.GET("/healthz", h.Health.Health)

	api := e.Group("/api", cache.Invalidate())
	cached := cache.Cache()

	users := api.Group("/users")
	users.POST("/register", h.Users.Register)
	users.POST("/login", h.Users.Login)
	users.GET("/:id", h.Users.Get)
	users.PATCH("/:id", h.Users.Update)
	users.GET("/:id/listings", h.Users.Listings, cached)

	listings := api.Group("/listings")
	listings.GET("", h.Listings.Search, cached)
	listings.GET("/:id", h.Listings.Get, cached)
	listings.POST("", h.Listings.Create)
	listings.PATCH("/:id", h.Listings.Update)
	listings.DELETE("/:id", h.Listings.Delete)

	bookings := api.Group("/bookings")
	bookings.GET("/:id", h.Bookings.Get)
	bookings.GET("/listing/:id", h.Bookings.ByListing)
	bookings.GET("/renter/:id", h.Bookings.ByRenter)
	bookings.GET("/host/:id", h.Bookings.ByHost)
	bookings.POST("", h.Bookings.Create)
	bookings.PATCH("/:id", h.Bookings.Update)

	reviews := api.Group("/reviews")
	reviews.GET("/:id", h.Reviews.Get, cached)
	reviews.GET("/listing/:id", h.Reviews.ByListing, cached)
	reviews.GET("/user/:id", h.Reviews.ByUser, cached)
	reviews.POST("", h.Reviews.Create)

	messages := api.Group("/messages")
	messages.GET("/:id", h.Messages.ByUser)
	messages.GET("/:id/:otherId", h.Messages.Conversation)
	messages.POST("", h.Messages.Create)
	messages.PATCH("/:id/read", h.Messages.MarkRead)
}
