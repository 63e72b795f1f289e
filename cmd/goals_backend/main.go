package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
	"github.com/dhanarakshak/goals-backend/internal/core/services"
	"github.com/dhanarakshak/goals-backend/internal/handlers"
	"github.com/dhanarakshak/goals-backend/internal/middleware"
	"github.com/dhanarakshak/goals-backend/internal/platform/clock"
	"github.com/dhanarakshak/goals-backend/internal/platform/config"
	"github.com/dhanarakshak/goals-backend/internal/repositories/database/pgsql"
	"github.com/dhanarakshak/goals-backend/internal/utils"
	"github.com/dhanarakshak/goals-backend/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title DhanaRakshak Goals API
// @version 1.0
// @description Financial goal tracking backend: goals, contribution ledger, milestones and reminders.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registerCustomValidators(logger)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	systemClock := clock.NewSystemClock()
	serviceContainer := services.NewServiceContainer(cfg, repos, systemClock, posthogClient)

	r := gin.New()

	// Global middleware (logging, recovery, rate limiting, CORS, analytics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT value", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	// Background reminder sweep loop. The sweep is idempotent, so overlapping
	// runs (manual trigger plus ticker) are harmless.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runReminderSweeper(sweepCtx, logger, cfg.ReminderSweepInterval, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server exited.")
}

// runMigrations applies all pending "up" migrations before the server starts
// serving traffic. It uses a temporary database/sql connection via the pgx
// stdlib driver so golang-migrate and the pgxpool share one driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// registerCustomValidators wires domain-specific binding validators into gin.
func registerCustomValidators(logger *slog.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Warn("Could not obtain validator engine, custom validators not registered.")
		return
	}

	// decimalgt0 validates that a decimal.Decimal field is strictly positive.
	err := v.RegisterValidation("decimalgt0", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return value.IsPositive()
	})
	if err != nil {
		logger.Error("Failed to register decimalgt0 validator", slog.String("error", err.Error()))
	}
}

// runReminderSweeper runs the reminder scheduling pass once at startup and
// then on every tick until ctx is cancelled.
func runReminderSweeper(ctx context.Context, logger *slog.Logger, interval time.Duration, serviceContainer *portssvc.ServiceContainer) {
	sweepLogger := logger.With(slog.String("component", "reminder_sweeper"))
	ctx = middleware.WithLogger(ctx, sweepLogger)

	sweep := func() {
		result, err := serviceContainer.Reminder.SweepReminders(ctx)
		if err != nil {
			sweepLogger.Error("Reminder sweep failed", slog.String("error", err.Error()))
			return
		}
		sweepLogger.Info("Reminder sweep completed",
			slog.Int("deadline_created", result.DeadlineCreated),
			slog.Int("contribution_created", result.ContributionCreated),
			slog.Int("progress_created", result.ProgressCreated),
		)
	}

	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
