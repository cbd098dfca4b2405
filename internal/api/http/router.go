package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	Registrations  *handlers.RegistrationsHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   fiber.Handler
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Info)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	authenticated := cfg.AuthMiddleware.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	if cfg.LoginLimiter != nil {
		authGroup.Post("/login", cfg.LoginLimiter, cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}

	users := app.Group("/users", authenticated)
	users.Get("/me", cfg.Users.Me)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.Deactivate)

	events := app.Group("/events")
	events.Get("/", cfg.Events.List)
	events.Get("/:id", cfg.Events.Get)
	events.Get("/:id/sessions", cfg.Events.ListSessions)
	events.Post("/", authenticated, cfg.Events.Create)
	events.Put("/:id", authenticated, cfg.Events.Update)
	events.Delete("/:id", authenticated, cfg.Events.Delete)
	events.Post("/:id/sessions", authenticated, cfg.Events.CreateSession)
	events.Post("/:id/register", authenticated, cfg.Registrations.Register)
	events.Get("/:id/registrations", authenticated, cfg.Events.ListRegistrations)

	app.Get("/me/registrations", authenticated, cfg.Events.MyRegistrations)
}
