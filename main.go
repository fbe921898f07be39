package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"exercisetracker/internal/config"
	"exercisetracker/internal/database"
	"exercisetracker/internal/handlers"
	applog "exercisetracker/internal/logger"
	"exercisetracker/internal/metrics"
	"exercisetracker/internal/middleware"
	"exercisetracker/internal/services"
	"exercisetracker/pkg/rabbitmq"
)

// App owns the HTTP server and the connections it depends on.
type App struct {
	Fiber   *fiber.App
	Store   *database.Store
	MQ      *rabbitmq.Client
	Metrics *metrics.Metrics

	limiter   *middleware.RateLimiter
	accessLog *io.PipeWriter
	log       *logrus.Logger
}

// NewApp connects the store (and the broker when configured) and builds the
// router. Any connection failure is returned instead of serving a broken app.
func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	store, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("store unavailable: %w", err)
	}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("broker unavailable: %w", err)
		}
	}

	app := newApp(cfg, store, mqClient, log)
	return app, nil
}

func newApp(cfg *config.Config, store *database.Store, mqClient *rabbitmq.Client, log *logrus.Logger) *App {
	// A nil *rabbitmq.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}

	m := metrics.New()
	userService := services.NewUserService(store.Users, log)
	exerciseService := services.NewExerciseService(store.Users, store.Exercises, publisher, cfg.DefaultLogLimit, log)

	userHandler := handlers.NewUserHandler(userService, m, log)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService, m, log)
	healthHandler := handlers.NewHealthHandler(store, cfg.StoreTimeout, log)

	app := fiber.New(fiber.Config{
		AppName:               "exercise-tracker",
		ErrorHandler:          middleware.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	accessLog := log.Writer()
	app.Use(logger.New(logger.Config{Output: accessLog}))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(m.Middleware())

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	}

	app.Get("/health", healthHandler.HandleHealth)
	app.Get("/metrics", m.Handler())

	api := app.Group("/api")
	if limiter != nil {
		api.Use(limiter.Handler())
	}
	userHandler.RegisterRoutes(api)
	exerciseHandler.RegisterRoutes(api)

	return &App{
		Fiber:   app,
		Store:   store,
		MQ:      mqClient,
		Metrics: m,
		limiter:   limiter,
		accessLog: accessLog,
		log:       log,
	}
}

// Close shuts down the server and releases connections.
func (a *App) Close() error {
	var firstErr error
	if err := a.Fiber.Shutdown(); err != nil {
		firstErr = err
	}
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := a.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.accessLog.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func logExerciseEvent(log logrus.FieldLogger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		event, err := rabbitmq.DecodeExerciseEvent(msg)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields(event)).Info("exercise logged")
		return nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := applog.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	if app.MQ != nil {
		if err := app.MQ.ConsumeExerciseEvents(logExerciseEvent(log)); err != nil {
			log.WithError(err).Warn("exercise event consumer not started")
		}
	}

	stopCleanup := make(chan struct{})
	if app.limiter != nil {
		app.limiter.StartCleanup(10*time.Minute, stopCleanup)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.AppPort).Info("starting server")
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	log.Info("shutting down server")
	close(stopCleanup)
	if err := app.Close(); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("server gracefully stopped")
}
