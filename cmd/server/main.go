package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/Fletcher15478/Ecomm/internal"
	"github.com/Fletcher15478/Ecomm/internal/auth"
	"github.com/Fletcher15478/Ecomm/internal/bootstrap"
	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/email"
	"github.com/Fletcher15478/Ecomm/internal/events"
	"github.com/Fletcher15478/Ecomm/internal/handler/admin"
	"github.com/Fletcher15478/Ecomm/internal/handler/storefront"
	"github.com/Fletcher15478/Ecomm/internal/handler/webhook"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/postgres"
	"github.com/Fletcher15478/Ecomm/internal/router"
	"github.com/Fletcher15478/Ecomm/internal/routes"
	"github.com/Fletcher15478/Ecomm/internal/service"
	"github.com/Fletcher15478/Ecomm/internal/shipping"
	"github.com/Fletcher15478/Ecomm/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Run migrations over database/sql
	logger.Info("Running database migrations...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := internal.RunMigrations(ctx, sqlDB, logger); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()

	// Initialize pgx connection pool for application
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()
	logger.Info("Database connection established")

	// Stores
	shippingStore := postgres.NewShippingStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	adminStore := postgres.NewAdminStore(pool)
	logStore := postgres.NewLogStore(pool)
	settingsStore := postgres.NewProductSettingsStore(pool)

	// Bootstrap the first admin user
	if err := bootstrap.EnsureMasterAdmin(ctx, adminStore, &bootstrap.AdminConfig{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, logger); err != nil {
		return fmt.Errorf("admin bootstrap failed: %w", err)
	}

	// Metrics
	httpMetrics := middleware.NewMetrics("storefront", nil)
	business := telemetry.InitBusinessMetrics("storefront")

	// Catalog and payment provider
	provider := newProvider(cfg, logger)

	// Shipping engine: flat table first, configurable zones second
	shippingEngine, err := shipping.NewEngine(
		shipping.NewFlatRateStrategy(nil),
		shipping.NewZoneStrategy(shippingStore),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize shipping engine: %w", err)
	}

	// Email
	emailService, err := email.NewService(newSender(cfg, logger), email.Config{
		From:    cfg.Email.From,
		ReplyTo: cfg.Email.ReplyTo,
	}, logStore, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	// Order events
	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	// Services
	checkoutService := service.NewCheckoutService(
		provider,
		shippingEngine,
		orderStore,
		emailService,
		publisher,
		business,
		service.CheckoutConfig{NotifyEmails: cfg.Checkout.NotifyEmails},
		logger,
	)
	catalogService := service.NewCatalogService(provider, settingsStore, adminStore, logger)
	shippingAdminService := service.NewShippingAdminService(shippingStore, adminStore, logger)
	webhookService := service.NewWebhookService(service.WebhookConfig{
		SignatureKey:    cfg.Square.WebhookSignatureKey,
		NotificationURL: cfg.Square.WebhookURL,
	}, logStore, business, logger)

	// Checkout rate limiting, shared through Redis when configured
	limitCfg := middleware.CheckoutRateLimiterConfig()
	limitCfg.Limit = cfg.RateLimit.CheckoutLimit
	limitCfg.Window = cfg.RateLimit.CheckoutWindow
	limitCfg.OnReject = func(r *http.Request) {
		business.RecordRateLimited("checkout")
	}
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limitCfg.Store = middleware.NewRedisWindowStore(rdb, "ratelimit:checkout:")
		logger.Info("Checkout rate limit shared via Redis")
	}

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	storefrontDeps := routes.StorefrontDeps{
		CheckoutHandler:   storefront.NewCheckoutHandler(checkoutService),
		ShippingHandler:   storefront.NewShippingHandler(shippingEngine, business),
		CatalogHandler:    storefront.NewCatalogHandler(catalogService),
		CheckoutRateLimit: middleware.RateLimit(limitCfg),
	}

	adminDeps := routes.AdminDeps{
		Authenticator:   auth.NewAuthenticator(adminStore),
		ShippingHandler: admin.NewShippingHandler(shippingAdminService),
		CatalogHandler:  admin.NewCatalogHandler(catalogService),
		LogHandler:      admin.NewLogHandler(orderStore, logStore, logStore, adminStore),
	}

	webhookDeps := routes.WebhookDeps{
		SquareHandler: webhook.NewSquareHandler(webhookService),
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0 // Disable HSTS in development
	}

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		middleware.WithClientIP(),
		httpMetrics.Middleware,
		telemetry.SentryMiddleware(),
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		router.Logger(logger),
	)

	// Request deadlines are set per route: checkout gets the longest budget.
	short := middleware.Timeout(middleware.ShortTimeout)

	// Not authenticated; keep off the public listener.
	r.Get("/metrics", httpMetrics.Handler().ServeHTTP, short)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}, short)

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterAdminRoutes(r, adminDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting storefront server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newProvider returns the Square client, or nil when credentials are missing
// so checkout and catalog report "not configured".
func newProvider(cfg *internal.Config, logger *slog.Logger) catalog.Provider {
	if !cfg.Square.Configured() {
		logger.Warn("Square not configured; checkout and catalog are disabled",
			"has_token", cfg.Square.AccessToken != "",
			"has_location", cfg.Square.LocationID != "")
		return nil
	}
	client, err := catalog.NewSquareClient(catalog.SquareConfig{
		AccessToken: cfg.Square.AccessToken,
		Environment: cfg.Square.Environment,
		LocationID:  cfg.Square.LocationID,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &telemetry.HTTPTransport{Transport: http.DefaultTransport},
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("Square client setup failed; checkout and catalog are disabled", "error", err)
		return nil
	}
	logger.Info("Square provider initialized", "environment", cfg.Square.Environment)
	return client
}

// newSender picks SMTP, then Postmark, then a sender that only logs.
func newSender(cfg *internal.Config, logger *slog.Logger) email.Sender {
	switch {
	case cfg.Email.Host != "":
		logger.Info("Email via SMTP", "host", cfg.Email.Host, "port", cfg.Email.Port)
		return email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, logger)
	case cfg.Email.PostmarkToken != "":
		logger.Info("Email via Postmark")
		return email.NewPostmarkSender(cfg.Email.PostmarkToken)
	default:
		logger.Warn("No email transport configured; emails are logged only")
		return email.NewLogSender(logger)
	}
}

// newPublisher picks NATS, then Kafka, then a publisher that drops events.
func newPublisher(cfg *internal.Config, logger *slog.Logger) (events.Publisher, error) {
	switch {
	case cfg.Events.NATSURL != "":
		logger.Info("Order events via NATS", "prefix", cfg.Events.NATSPrefix)
		return events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.NATSPrefix, logger)
	case len(cfg.Events.KafkaBrokers) > 0:
		logger.Info("Order events via Kafka", "topic", cfg.Events.KafkaTopic)
		return events.NewKafkaPublisher(cfg.Events.KafkaTopic, cfg.Events.KafkaBrokers...), nil
	default:
		return events.NopPublisher{}, nil
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
