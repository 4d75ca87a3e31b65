package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notify-api/internal/application/auth"
	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/transport/http/handler"
	appmiddleware "github.com/go-notify-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(appmiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{chimiddleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	authSvc := auth.NewService(deps.Users, deps.JWTProvider)
	notifSvc := notification.NewService(deps.Notifications, deps.Cache, deps.Events, deps.Logger)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	notifH := handler.NewNotificationHandler(notifSvc, cfg.Pagination)

	// 5 requests/second, burst of 10, applied to the credential endpoints.
	credentialRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	requireUser := appmiddleware.Auth(authSvc)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(handler.NotFound)
		r.MethodNotAllowed(handler.MethodNotAllowed)

		r.Get("/health", healthH.Check)

		r.Route("/auth", func(r chi.Router) {
			r.With(credentialRL.Limit).Post("/register", authH.Register)
			r.With(credentialRL.Limit).Post("/login", authH.Login)
			r.With(requireUser).Get("/me", authH.Me)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/", notifH.Create)
			r.Get("/", notifH.List)
			// Literal segments are registered before /{id} routes.
			r.Get("/unread-count", notifH.UnreadCount)
			r.Patch("/read-all", notifH.MarkAllAsRead)
			r.Patch("/{id}/read", notifH.MarkAsRead)
			r.Delete("/{id}", notifH.Delete)
		})
	})

	return r
}
