package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and which optional backends are wired in.
type HealthHandler struct {
	StoreDriver string
	Cache       bool
	Events      bool
}

// Health always answers 200 while the process is serving.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"store":  h.StoreDriver,
		"cache":  h.Cache,
		"events": h.Events,
	})
}
