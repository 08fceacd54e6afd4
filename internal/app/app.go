package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sweet-shop/internal/admin"
	"sweet-shop/internal/config"
	"sweet-shop/internal/database"
	"sweet-shop/internal/event"
	"sweet-shop/internal/handler"
	"sweet-shop/internal/kvstore"
	"sweet-shop/internal/metrics"
	"sweet-shop/internal/middleware"
	"sweet-shop/internal/router"
	"sweet-shop/internal/session"
	"sweet-shop/internal/storefront"
	"sweet-shop/internal/sweetsapi"
	"sweet-shop/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	var cleanups []func()
	fail := func(err error) (*App, error) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		return nil, err
	}

	var db *database.DB
	if cfg.TokenStore == kvstore.DriverPostgres {
		slog.Info("connecting to PostgreSQL")
		var err error
		db, err = database.Open(context.Background(), database.Options{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		cleanups = append(cleanups, db.Close)

		if err := db.EnsureSchema(context.Background()); err != nil {
			return fail(fmt.Errorf("failed to ensure database schema: %w", err))
		}
		slog.Info("database ready")
	}

	var kv kvstore.Store
	var err error
	if db != nil {
		kv, err = kvstore.Open(cfg.TokenStore, cfg.TokenFile, db.Pool)
	} else {
		kv, err = kvstore.Open(cfg.TokenStore, cfg.TokenFile, nil)
	}
	if err != nil {
		return fail(fmt.Errorf("failed to open token store: %w", err))
	}
	slog.Info("token store ready", "driver", cfg.TokenStore)

	client := sweetsapi.New(cfg.SweetsAPIURL, cfg.SweetsAPITimeout, nil)
	sessions := session.NewStore(client, kv)
	client.SetTokenSource(sessions)
	gate := admin.NewGate(sessions, client)

	bus := event.NewBus()
	store := storefront.New(sessions, client, gate, storefront.Options{
		Bus:         bus,
		CallTimeout: cfg.SweetsAPITimeout,
	})
	cleanups = append(cleanups, store.Close)

	if err := store.Start(context.Background()); err != nil {
		return fail(fmt.Errorf("failed to start storefront: %w", err))
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	cleanups = append(cleanups, bgCancel)

	hub := websocket.NewHub(bus)
	go hub.Run(bgCtx)

	handlers := router.Handlers{
		Session: handler.NewSessionHandler(store),
		Catalog: handler.NewCatalogHandler(store),
		Cart:    handler.NewCartHandler(store),
		Notice:  handler.NewNoticeHandler(store),
		Admin:   handler.NewAdminHandler(store),
		Events:  websocket.NewUpgrader(hub, cfg.CORSOrigins),
	}
	if cfg.MetricsEnabled {
		handlers.Metrics = metrics.New()
		go handlers.Metrics.Watch(bgCtx, bus)
	}
	if db != nil {
		handlers.Health = db.Health
	}

	appRouter := router.New(cfg, middleware.NewSessionMiddleware(store), handlers)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: cleanups,
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Storefront before the database: in-flight results may still touch the token store.
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}

	slog.Info("server stopped")
	return runErr
}
