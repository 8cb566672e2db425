package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recell-store/internal/config"
	"recell-store/internal/database"
	"recell-store/internal/events"
	"recell-store/internal/handler"
	"recell-store/internal/media"
	"recell-store/internal/repository"
	"recell-store/internal/router"
	"recell-store/internal/service"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; ignored when the file is absent.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting recell-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply pending schema migrations before opening the pool
	if err := database.RunMigrations(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	ticketRepo := repository.NewTicketRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool, logger)

	// Initialize the event publisher (no-op unless RabbitMQ is configured)
	publisher, cleanupEvents, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return err
	}
	defer cleanupEvents()

	// Initialize the media store with S3 and local fallback
	mediaStore, staticDir, err := newMediaStore(ctx, cfg.Media, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	// Initialize the Google verifier when federated sign-in is enabled
	var google service.GoogleVerifier
	if cfg.Auth.GoogleEnabled {
		google = service.NewGoogleVerifier(cfg.Auth.Google)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.Auth, google, logger)
	userService := service.NewUserService(userRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, publisher, logger)
	ticketService := service.NewTicketService(ticketRepo, publisher, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		User:    handler.NewUserHandler(userService, logger),
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Ticket:  handler.NewTicketHandler(ticketService, logger),
		Media:   handler.NewMediaHandler(mediaStore, logger),
	}

	// Initialize router
	mux := router.New(handlers, authService, staticDir, logger)

	// Periodically sweep expired sessions
	go sweepSessions(ctx, sessionRepo, logger)

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

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPublisher connects to RabbitMQ when events are enabled, otherwise
// returns the no-op publisher. The cleanup closes the publisher and the
// connection.
func newPublisher(cfg config.EventsConfig, logger zerolog.Logger) (events.Publisher, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("event publishing disabled")
		return events.NewNop(), func() {}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	publisher, err := events.NewAMQPPublisher(conn, cfg.Exchange, logger)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
		if err := conn.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
		}
	}
	return publisher, cleanup, nil
}

// newMediaStore builds the S3 store when enabled, falling back to local
// files. The returned staticDir is non-empty only for the local store, so
// the router knows to serve /static/.
func newMediaStore(ctx context.Context, cfg config.MediaConfig, logger zerolog.Logger) (media.Store, string, error) {
	if cfg.S3Enabled {
		store, err := media.NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.BaseURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 store, falling back to local file storage")
		} else {
			return store, "", nil
		}
	}

	store, err := media.NewFileStore(cfg.LocalDir, cfg.BaseURL, logger)
	if err != nil {
		return nil, "", err
	}
	logger.Info().Str("dir", cfg.LocalDir).Msg("using local file storage for media")
	return store, cfg.LocalDir, nil
}

// sweepSessions deletes expired sessions hourly until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions repository.SessionRepository, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("failed to sweep expired sessions")
				continue
			}
			if deleted > 0 {
				logger.Debug().Int64("deleted", deleted).Msg("expired sessions removed")
			}
		}
	}
}
