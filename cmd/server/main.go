package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/spaceshare/internal/config"
	"github.com/iliyamo/spaceshare/internal/database"
	"github.com/iliyamo/spaceshare/internal/handler"
	"github.com/iliyamo/spaceshare/internal/middleware"
	"github.com/iliyamo/spaceshare/internal/queue"
	"github.com/iliyamo/spaceshare/internal/repository"
	"github.com/iliyamo/spaceshare/internal/router"
	"github.com/iliyamo/spaceshare/internal/seed"
	"github.com/iliyamo/spaceshare/internal/validation"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedData {
		if err := seed.Run(ctx, store, cfg.BcryptCost, time.Now()); err != nil {
			return err
		}
		log.Info("seed data loaded")
	}

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.Cache.Enabled {
		log.Warn("redis unavailable; response cache disabled", "addr", cfg.Redis.Address())
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)

	var events queue.Publisher = queue.Nop{}
	if cfg.Events.Enabled {
		events = queue.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
		if cfg.Events.ConsumerEnabled {
			queue.StartActivityConsumer(ctx, cfg.Events.URL, cfg.Events.Exchange, cfg.Events.ActivityLogPath, log)
		}
	}
	defer events.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.Slog(log))

	deps := handler.Deps{Store: store, Events: events, Log: log, Timeout: cfg.RequestTimeout}
	router.RegisterRoutes(e, router.Handlers{
		Health:   &handler.HealthHandler{StoreDriver: cfg.StoreDriver, Cache: cache != nil, Events: cfg.Events.Enabled},
		Users:    handler.NewUserHandler(deps, cfg.BcryptCost),
		Listings: handler.NewListingHandler(deps),
		Bookings: handler.NewBookingHandler(deps),
		Reviews:  handler.NewReviewHandler(deps),
		Messages: handler.NewMessageHandler(deps),
	}, cache)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore selects the store named by STORE_DRIVER. The returned func
// releases any resources it holds.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, func(), error) {
	if cfg.StoreDriver != config.DriverMySQL {
		return repository.NewMemStore(), func() {}, nil
	}

	dsn := database.DSN(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	db, err := database.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("mysql connected", "host", cfg.DB.Host, "db", cfg.DB.Name)
	return repository.NewSQLStore(db), func() { _ = db.Close() }, nil
}
