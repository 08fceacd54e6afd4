package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sweet-shop/internal/config"
	"sweet-shop/internal/handler"
	"sweet-shop/internal/metrics"
	"sweet-shop/internal/middleware"
)

type Handlers struct {
	Session *handler.SessionHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Notice  *handler.NoticeHandler
	Admin   *handler.AdminHandler
	Events  http.Handler
	Metrics *metrics.Metrics

	// Health, when set, backs /health with a dependency check.
	Health func(ctx context.Context) error
}

func New(cfg *config.Config, sessionMiddleware *middleware.SessionMiddleware, handlers Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if handlers.Metrics != nil {
		r.Use(handlers.Metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if handlers.Health != nil {
			if err := handlers.Health(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if handlers.Metrics != nil {
		r.Handle("/metrics", handlers.Metrics.Handler())
	}
	if handlers.Events != nil {
		r.Handle("/ws", handlers.Events)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/session", func(session chi.Router) {
			session.Post("/login", handlers.Session.Login)
			session.Get("/", handlers.Session.Current)
			session.Post("/logout", handlers.Session.Logout)
		})

		api.Get("/notices", handlers.Notice.List)

		api.Group(func(authed chi.Router) {
			authed.Use(sessionMiddleware.RequireSession)

			authed.Get("/catalog", handlers.Catalog.List)
			authed.Post("/catalog/reload", handlers.Catalog.Reload)
			authed.Get("/cart", handlers.Cart.Get)
			authed.Post("/cart/items", handlers.Cart.AddItem)
			authed.Post("/cart/checkout", handlers.Cart.Checkout)
			authed.With(sessionMiddleware.RequireAdmin).Post("/admin/sweets", handlers.Admin.AddSweet)
		})
	})

	return r
}
