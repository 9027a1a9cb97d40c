package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"goout/docs"
	"goout/internal/config"
	"goout/internal/database"
	"goout/internal/database/migration"
	"goout/internal/events"
	handlers "goout/internal/http/handler"
	"goout/internal/http/middleware"
	"goout/internal/logging"
	"goout/internal/metrics"
	"goout/internal/otel"
	"goout/internal/repository"
	mongorepo "goout/internal/repository/mongo"
	"goout/internal/repository/postgres"
	"goout/internal/schema"
	"goout/internal/service"
	"goout/internal/storage"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, logging.Location(cfg.TimeZone))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	reg := schema.MustDefault()

	repo, closeRepo, err := openRepository(ctx, cfg, reg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := storage.New(cfg.Media)
	if err != nil {
		return fmt.Errorf("init media storage: %w", err)
	}

	pub, err := events.NewNATS(cfg.NATS)
	if err != nil {
		return err
	}
	defer pub.Close()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer, "/health", "/healthz")
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	svcs := service.NewResourceServices(reg, store, repo, service.Options{
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		DefaultLimit:   cfg.Pagination.DefaultLimit,
		OwnerLimit:     cfg.Pagination.OwnerLimit,
		MaxLimit:       cfg.Pagination.MaxLimit,
		Publisher:      pub,
		Metrics:        m,
		Logger:         logger,
	})

	app := newApp(cfg, logger, httpMetrics)

	var auth fiber.Handler
	if cfg.JWTSecret != "" {
		auth = middleware.JWT([]byte(cfg.JWTSecret))
	} else {
		logger.Warn("auth_disabled", "detail", "JWT_SECRET is empty, create and delete are open")
	}

	handlers.RegisterRoutes(app, handlers.Deps{
		Services: svcs,
		Registry: reg,
		Store:    store,
		Health:   repo,
		Auth:     auth,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	logger.Info("server_started", "port", cfg.Port, "store", cfg.StoreDriver, "media", cfg.Media.Driver)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server_stopping")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// newApp builds the fiber app with the global middleware chain and the
// operational routes that do not depend on the store.
func newApp(cfg *config.AppConfig, logger *slog.Logger, httpMetrics *middleware.PrometheusMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "goout-api",
		BodyLimit: cfg.BodyLimitBytes,
		// Multipart bodies are parsed by the create handler so a broken form
		// answers with the INVALID_FORM envelope.
		DisablePreParseMultipartForm: true,
		ErrorHandler:                 handlers.ErrorHandler(handlers.ErrorConfig{ExposeDetails: cfg.ExposeErrorDetails, Logger: logger}),
	})

	app.Use(fiberrecover.New())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	return app
}

// openRepository connects the document store selected by STORE_DRIVER.
func openRepository(ctx context.Context, cfg *config.AppConfig, reg *schema.Registry, logger *slog.Logger) (repository.ResourceRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewResourcePostgres(db), func() { _ = db.Close() }, nil

	case config.StoreDriverMongo:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		collections := make(map[string]string, len(reg.Kinds))
		for _, k := range reg.Kinds {
			collections[k.Name] = k.Collection
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return mongorepo.NewResourceMongo(client.Database(cfg.Mongo.Database), collections), closeFn, nil

	default:
		return nil, nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL schema if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(os.Stdout, cfg.LogLevel, logging.Location(cfg.TimeZone))
			if cfg.StoreDriver != config.StoreDriverPostgres {
				logger.Info("db_migration_skip", "detail", "store driver "+cfg.StoreDriver+" needs no migration")
				return nil
			}

			db, err := database.NewPostgres(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			return migration.EnsureMigrated(cmd.Context(), db, logger, cfg.Database.Host)
		},
	}
}
