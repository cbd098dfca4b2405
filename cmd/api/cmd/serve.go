package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/event-service/internal/api/http"
	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/messaging"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/persistence"
	"github.com/spec-kit/event-service/internal/ratelimit"
	"github.com/spec-kit/event-service/internal/service"
	"github.com/spec-kit/event-service/internal/worker"
)

const (
	shutdownTimeout  = 10 * time.Second
	poolStatInterval = 15 * time.Second
)

var (
	serverHost string
	serverPort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "bind host; overrides APP_HOST")
	serveCmd.Flags().StringVar(&serverPort, "port", "", "bind port; overrides APP_PORT")
}

func runServer(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if serverHost != "" {
		cfg.App.Host = serverHost
	}
	if serverPort != "" {
		cfg.App.Port = serverPort
	}

	store, pg, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	if publisher := connectBroker(cfg.Broker, logger); publisher != nil {
		defer publisher.Close()
		worker.StartEventForwarder(messaging.NewForwarder(dispatcher, publisher, logger))
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{Store: store, Logger: logger})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{Store: store, Logger: logger})
	eventService := service.NewEventService(service.EventDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	readiness := map[string]handlers.Pinger{"store": store}
	if redis.Enabled() {
		readiness["redis"] = redis
	}
	loginLimiter := newLoginLimiter(cfg.RateLimit, redis, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Events:         handlers.NewEventsHandler(eventService),
		Registrations:  handlers.NewRegistrationsHandler(registrationService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		LoginLimiter:   loginLimiter,
		Metrics:        metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		return metrics.CollectPool(gctx, pg.PoolHandle(), poolStatInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	return g.Wait()
}

// connectBroker returns nil when no broker is configured or reachable; events then stay in-process.
func connectBroker(cfg config.BrokerConfig, logger *zap.Logger) *messaging.Publisher {
	if cfg.RabbitURL == "" {
		return nil
	}
	publisher, err := messaging.NewPublisher(cfg.RabbitURL, cfg.Exchange, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable; domain events will not be forwarded", zap.Error(err))
		return nil
	}
	logger.Info("forwarding domain events to rabbitmq", zap.String("exchange", cfg.Exchange))
	return publisher
}

// newLoginLimiter returns nil when login attempts are not limited.
func newLoginLimiter(cfg config.RateLimitConfig, redis *persistence.Redis, logger *zap.Logger) fiber.Handler {
	if cfg.LoginAttempts <= 0 {
		logger.Warn("login rate limiting disabled")
		return nil
	}
	var limiter ratelimit.Limiter
	if redis.Enabled() {
		limiter = ratelimit.NewRedisLimiter(redis.Client, cfg.LoginAttempts, cfg.LoginWindow())
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.LoginAttempts, cfg.LoginWindow())
	}
	return ratelimit.Middleware(limiter, "login", cfg.LoginWindow(), logger)
}
