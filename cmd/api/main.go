package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"staffingapi/docs"
	"staffingapi/internal/app"
	"staffingapi/internal/config"
	"staffingapi/internal/database"
	"staffingapi/internal/database/migration"
	handlers "staffingapi/internal/http/handler"
	"staffingapi/internal/http/middleware"
	"staffingapi/internal/logging"
	"staffingapi/internal/otel"
	"staffingapi/internal/scheduler"
)

// Compliance documents are capped at 10 MiB; leave room for the multipart framing.
const bodyLimit = 11 << 20

// @title Construction Staffing Marketplace API
// @version 1.0
// @description Agency directory, claims, compliance tracking and messaging.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	log := logging.New(cfg.Log, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log, database.Host(cfg.Database)); err != nil {
			log.WithError(err).Fatal("database migration failed")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := app.New(cfg, db, app.OpenStorage(cfg.MinIO, log), log, reg)
	deps.Mailer.RequestID = middleware.RequestIDFrom
	limiter := middleware.NewRateLimiter(cfg.RateLimit)

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register http metrics")
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	// Register global middleware
	srv.Use(recover.New(recover.Config{EnableStackTrace: true}))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	srv.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	srv.Use(middleware.Logger(log))
	srv.Use(prom.Handler())
	srv.Use(otelfiber.Middleware())
	origins := strings.Join(cfg.AllowedOrigins(), ",")
	srv.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "X-Request-ID, Retry-After",
		AllowCredentials: origins != "*",
	}))

	srv.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(srv, handlers.Dependencies{
		DB:       deps.DB,
		Storage:  deps.Storage,
		Services: deps.Services,
		Auth:     middleware.NewAuthenticator(cfg.Auth),
		Limiter:  limiter,
	})

	// Swagger UI with dynamic host and scheme
	srv.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	jobs := scheduler.New(log, loc)
	if err := jobs.Add("compliance_reminders", cfg.Compliance.ReminderCron,
		scheduler.ComplianceReminders(deps.Services.Compliance)); err != nil {
		log.WithError(err).Fatal("invalid COMPLIANCE_CRON")
	}
	if err := jobs.Add("rate_limiter_prune", "@every 10m", scheduler.PruneIdle(limiter, 15*time.Minute, log)); err != nil {
		log.WithError(err).Fatal("failed to schedule limiter pruning")
	}
	jobs.Start()

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"event": "server_started", "addr": addr}).Info("listening")
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("failed to start server")
		}
	case <-ctx.Done():
	}

	log.WithField("event", "server_stopping").Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("scheduler shutdown")
	}
	// Outstanding notification emails.
	deps.Mailer.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.WithError(err).Error("tracing shutdown")
	}
}
