package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Cart and wishlist documents live in Redis
	rdb, err := database.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer rdb.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)
	outboxRepo := repository.NewOutboxRepository(pool, logger)
	cartRepo := repository.NewCartRepository(rdb, logger)
	wishlistRepo := repository.NewWishlistRepository(rdb, logger)

	// Seed the catalogue before serving so the first requests see it
	if len(cfg.Catalog.SeedPaths) > 0 {
		loader, err := catalog.NewLoader(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize catalogue loader: %w", err)
		}
		n, err := catalog.NewSeeder(loader, productRepo, logger).Seed(ctx, cfg.Catalog.SeedPaths)
		if err != nil {
			return fmt.Errorf("failed to seed catalogue: %w", err)
		}
		logger.Info().Int("products", n).Msg("catalogue seeded")
	}

	// Anonymous carts are kept in the device session
	deviceStore, err := session.NewDeviceStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	stores := session.NewFactory(cartRepo, wishlistRepo, productRepo, deviceStore, cfg.Session.Name, logger)

	gateway := payment.NewStripeGateway(cfg.Stripe, logger)

	mailer, err := notify.NewMailer(cfg.SMTP, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, logger)
	checkoutService := service.NewCheckoutService(orderService, gateway, logger)
	profileService := service.NewProfileService(profileRepo, stores, logger)
	contactService := service.NewContactService(mailer, cfg.SMTP.ContactInbox, logger)

	// Deliver queued order e-mails in the background
	var workers sync.WaitGroup
	worker := notify.NewWorker(outboxRepo, mailer, notify.WorkerConfigFrom(cfg.Outbox), logger)
	workers.Add(1)
	go func() {
		defer workers.Done()
		worker.Run(ctx)
	}()

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		}, logger),
		Products: handler.NewProductHandler(productService, logger),
		Store:    handler.NewStoreHandler(stores, productService, logger),
		Orders:   handler.NewOrderHandler(orderService, checkoutService, stores, logger),
		Payments: handler.NewPaymentHandler(gateway, orderService, logger),
		Profile:  handler.NewProfileHandler(profileService, logger),
		Contact:  handler.NewContactHandler(contactService, logger),
	}

	// Initialize router
	mux := router.New(handlers, profileService, cfg.Server, cfg.Auth, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		cancel()
		workers.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Stop the outbox worker after in-flight requests have queued their mail
		cancel()
		workers.Wait()

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
