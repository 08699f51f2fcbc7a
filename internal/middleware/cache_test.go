package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/spaceshare/internal/config"
)

func newCachedEcho(t *testing.T) (*echo.Echo, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{
		Enabled:     true,
		MethodList:  []string{"GET"},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "test",
	}
	rc := NewResponseCache(cfg, rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NotNil(t, rc)

	hits := 0
	e := echo.New()
	api := e.Group("/api", rc.Invalidate())
	api.GET("/listings/:id", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, map[string]any{"id": c.Param("id"), "hits": hits})
	}, rc.Cache())
	api.POST("/listings", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})
	api.POST("/fail", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "nope"})
	})
	return e, &hits
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCacheHitServesStoredBody(t *testing.T) {
	e, hits := newCachedEcho(t)

	first := do(e, http.MethodGet, "/api/listings/1")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/api/listings/1")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	require.Equal(t, 1, *hits)
}

func TestCacheKeysIncludeConcretePath(t *testing.T) {
	e, hits := newCachedEcho(t)

	do(e, http.MethodGet, "/api/listings/1")
	other := do(e, http.MethodGet, "/api/listings/2")
	require.Equal(t, "MISS", other.Header().Get("X-Cache"))
	require.Contains(t, other.Body.String(), `"id":"2"`)
	require.Equal(t, 2, *hits)
}

func TestSuccessfulWriteInvalidates(t *testing.T) {
	e, hits := newCachedEcho(t)

	do(e, http.MethodGet, "/api/listings/1")
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/api/listings").Code)

	after := do(e, http.MethodGet, "/api/listings/1")
	require.Equal(t, "MISS", after.Header().Get("X-Cache"))
	require.Equal(t, 2, *hits)
}

func TestFailedWriteKeepsCache(t *testing.T) {
	e, hits := newCachedEcho(t)

	do(e, http.MethodGet, "/api/listings/1")
	require.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/fail").Code)

	after := do(e, http.MethodGet, "/api/listings/1")
	require.Equal(t, "HIT", after.Header().Get("X-Cache"))
	require.Equal(t, 1, *hits)
}

func TestDisabledCachePassesThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: false}, nil, nil)
	require.Nil(t, rc)

	e := echo.New()
	calls := 0
	e.GET("/x", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}, rc.Cache(), rc.Invalidate())

	do(e, http.MethodGet, "/x")
	rec := do(e, http.MethodGet, "/x")
	require.Equal(t, "", rec.Header().Get("X-Cache"))
	require.Equal(t, 2, calls)
}

func TestPayloadRoundTripRejectsShortInput(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 1})
	require.False(t, ok)
}
