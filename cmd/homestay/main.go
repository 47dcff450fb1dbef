package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homestay/internal/app/commands"
	bookingapp "homestay/internal/app/handlers/booking"
	listingapp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/locks"
	"homestay/internal/app/middleware"
	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/queries"
	authsvc "homestay/internal/app/services/auth"
	"homestay/internal/app/uow"
	"homestay/internal/infra/broker/kafka"
	"homestay/internal/infra/config"
	"homestay/internal/infra/db/mongo"
	ginserver "homestay/internal/infra/http/gin"
	"homestay/internal/infra/obs"
	infraoutbox "homestay/internal/infra/outbox"
	"homestay/internal/infra/payments"
	stripecharger "homestay/internal/infra/payments/stripe"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
	"homestay/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	outboxWorker *infraoutbox.Worker
	ready        func() error
}

// buildApplication wires storage, payments and transport. Mongo, Kafka,
// Stripe and S3 are each optional; without them the service falls back to
// in-memory storage, a simulated payments provider, and no publication.
func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	app := application{ready: func() error { return nil }}
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		uowFactory uow.Factory
		box        appoutbox.Outbox
		idStore    middleware.IdempotencyStore
	)

	uowFactory = memory.Factory{
		ListingsRepo: memory.NewListingRepository(),
		UsersRepo:    memory.NewUserRepository(),
		BookingsRepo: memory.NewBookingRepository(),
	}
	box = memory.NewOutbox()
	idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)

	if cfg.MongoURI != "" {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		})
		uowFactory = mongo.NewFactory(client.DB)
		box = infraoutbox.NewStore(client.DB)
		idStore = mongo.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("storage configured", "backend", "mongo", "db", cfg.MongoDB)
	} else {
		logger.Info("storage configured", "backend", "memory")
	}

	var charger policies.PaymentsPort
	if cfg.StripeKey != "" {
		c, err := stripecharger.NewCharger(cfg.StripeKey, cfg.PlatformFeeBps, logger)
		if err != nil {
			return application{}, cleanup, err
		}
		charger = c
		logger.Info("payments configured", "provider", "stripe", "fee_bps", cfg.PlatformFeeBps)
	} else {
		charger = payments.Simulator{FeeBps: cfg.PlatformFeeBps, Logger: logger}
		logger.Info("payments configured", "provider", "simulator", "fee_bps", cfg.PlatformFeeBps)
	}

	var uploader policies.UploaderPort = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return application{}, cleanup, err
		}
		uploader = client
	}

	unit, err := uowFactory.Begin(ctx)
	if err != nil {
		return application{}, cleanup, err
	}
	authService := &authsvc.Service{
		Users:      unit.Users(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoW:           uowFactory,
		Payments:      charger,
		Locks:         locks.NewKeyedMutex(),
		Outbox:        box,
		ChargeTimeout: cfg.ChargeTimeout,
		Logger:        logger,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		UoW:      uowFactory,
		Uploader: uploader,
		Outbox:   box,
		Logger:   logger,
	})
	commandBusWithMiddleware := middleware.ChainCommands(commandBus, middleware.Idempotency(idStore))

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{UoW: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.TenantBookingsQuery{}.Key(), &bookingapp.TenantBookingsHandler{UoW: uowFactory})

	if store, ok := box.(*infraoutbox.Store); ok && len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = producer.Close() })
		app.outboxWorker = &infraoutbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		logger.Info("outbox worker enabled", "brokers", cfg.KafkaBrokers)
	}

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: commandBusWithMiddleware, Logger: logger},
		Listing:        ginserver.ListingHandler{Queries: queryBus, Logger: logger},
		HostListing:    ginserver.HostListingHandler{Commands: commandBusWithMiddleware, Logger: logger},
		Me:             ginserver.MeHandler{Queries: queryBus, Logger: logger},
		AuthMiddleware: authMW.Handle,
	}
	return app, cleanup, nil
}
