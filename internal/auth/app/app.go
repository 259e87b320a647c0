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

	httpapi "github.com/diyageorge33/minipro/internal/auth/http"
	"github.com/diyageorge33/minipro/internal/auth/notify"
	"github.com/diyageorge33/minipro/internal/auth/service"
	"github.com/diyageorge33/minipro/internal/auth/store"
	"github.com/diyageorge33/minipro/internal/auth/store/drivers/postgres"
	"github.com/diyageorge33/minipro/internal/auth/store/drivers/sqlite"
	"github.com/diyageorge33/minipro/pkg/cryptox"
	"github.com/diyageorge33/minipro/pkg/httpx"
	"github.com/diyageorge33/minipro/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	notifier service.Notifier
	mailer   string

	// Services
	accountService      *service.AccountService
	sessionService      *service.SessionService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "minipro-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password and code hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if cfg.SessionSecret != "" {
		app.logger.Debug("SESSION_SECRET is set but not used; session tokens are random")
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
		"mailer", app.mailer,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Handler exposes the configured router, mainly for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.PostgresDSN())
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initNotifier picks SMTP delivery when a relay is configured and falls
// back to logging the codes otherwise.
func (app *Application) initNotifier() error {
	if !app.cfg.MailConfigured() {
		app.notifier = notify.LogNotifier{}
		app.mailer = "log"
		app.logger.Warn("EMAIL_HOST not set, verification codes will only be logged")
		return nil
	}

	n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     app.cfg.Email.Host,
		Port:     app.cfg.Email.Port,
		Secure:   app.cfg.Email.Secure,
		Username: app.cfg.Email.User,
		Password: app.cfg.Email.Pass,
		From:     app.cfg.Email.From,
	})
	if err != nil {
		return fmt.Errorf("failed to configure mailer: %w", err)
	}
	app.notifier = n
	app.mailer = "smtp"
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store: app.db,
		TTL:   app.cfg.SessionTTL,
	}

	app.accountService = &service.AccountService{
		Store:             app.db,
		Notifier:          app.notifier,
		Sessions:          app.sessionService,
		OTPTTL:            app.cfg.OTPTTL(),
		LogCodesOnFailure: app.cfg.Env == "dev",
	}

	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.AccountService = app.accountService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.Cookie = httpapi.CookieConfig{
		Name:   app.cfg.SessionCookieName,
		Secure: app.cfg.SessionCookieSecure,
	}
	router.CORS = httpx.CORSConfig{
		AllowedOrigins:   httpx.SplitOrigins(app.cfg.CORSOrigins),
		AllowCredentials: true,
	}
	router.ClientURL = app.cfg.ClientURL
	router.Mailer = app.mailer
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
