package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ridebook/internal/app"
	"ridebook/internal/config"
	"ridebook/internal/events"
	"ridebook/internal/fare"
	"ridebook/internal/gateway"
	"ridebook/internal/handler"
	internalRedis "ridebook/internal/redis"
	"ridebook/internal/repository/postgres"
	"ridebook/internal/service"
	"ridebook/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first so the database and redis clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize New Relic")
			nrApp = nil
		} else {
			logger.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	publisher, err := events.NewNSQPublisher(cfg.NSQ.NSQDAddress, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to nsqd")
	}
	defer publisher.Stop()
	logger.Info("connected to NSQ")

	deps := wireServices(db, redisClient, publisher, cfg, logger)

	// Driver approval events promote the underlying user to the DRIVER role.
	consumer, err := events.NewDriverApprovedConsumer(
		cfg.NSQ.Channel,
		cfg.NSQ.NSQDAddress,
		deps.driverService.PromoteUserRole,
		logger,
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to start driver_approved consumer")
	}
	defer consumer.Stop()

	if err := deps.fareService.Seed(ctx); err != nil {
		logger.WithError(err).Fatal("failed to seed fare configs")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      deps.router(redisClient, nrApp, logger, cfg.JWT.Secret),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited")
}

// serviceDeps groups the wired services the entrypoint needs after construction.
type serviceDeps struct {
	driverService *service.DriverService
	fareService   *service.FareService

	userHandler        *handler.UserHandler
	driverHandler      *handler.DriverHandler
	rideRequestHandler *handler.RideRequestHandler
	rideHandler        *handler.RideHandler
	bookingHandler     *handler.BookingHandler
	paymentHandler     *handler.PaymentHandler
	reviewHandler      *handler.ReviewHandler
	fareHandler        *handler.FareHandler
}

// wireServices builds the repository, service and handler graph.
func wireServices(db *sql.DB, redisClient *redis.Client, publisher events.Publisher, cfg *config.Config, logger *logrus.Logger) *serviceDeps {
	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	requestRepo := postgres.NewRideRequestRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	fareConfigRepo := postgres.NewFareConfigRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// External clients.
	gatewayClient := gateway.NewSSLCommerzClient(cfg.Gateway, logger)
	renderer := service.NewTextInvoiceRenderer()
	blobs := storage.NewLocalBlobStore("./data/invoices", "/invoices")

	peak := fare.PeakHours{
		MorningStart: cfg.Pricing.MorningPeakStart,
		MorningEnd:   cfg.Pricing.MorningPeakEnd,
		EveningStart: cfg.Pricing.EveningPeakStart,
		EveningEnd:   cfg.Pricing.EveningPeakEnd,
	}

	// Services.
	notifier := service.NewNotificationService(service.NewLogNotifier(logger))
	userService := service.NewUserService(userRepo, logger)
	driverService := service.NewDriverService(driverRepo, userRepo, requestRepo, cacheStore, publisher, notifier, logger)
	requestService := service.NewRideRequestService(requestRepo, driverRepo, txRunner, lockStore, cacheStore, notifier, logger)
	rideService := service.NewRideService(rideRepo, driverRepo, lockStore, logger)
	bookingService := service.NewBookingService(bookingRepo, rideRepo, userRepo, paymentRepo, txRunner, gatewayClient, logger)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, rideRepo, userRepo, txRunner, gatewayClient, renderer, blobs, notifier, logger)
	reviewService := service.NewReviewService(reviewRepo, requestRepo, driverRepo, logger)
	fareService := service.NewFareService(fareConfigRepo, requestRepo, cacheStore, peak, logger)

	return &serviceDeps{
		driverService:      driverService,
		fareService:        fareService,
		userHandler:        handler.NewUserHandler(userService),
		driverHandler:      handler.NewDriverHandler(driverService),
		rideRequestHandler: handler.NewRideRequestHandler(requestService),
		rideHandler:        handler.NewRideHandler(rideService),
		bookingHandler:     handler.NewBookingHandler(bookingService),
		paymentHandler:     handler.NewPaymentHandler(paymentService),
		reviewHandler:      handler.NewReviewHandler(reviewService),
		fareHandler:        handler.NewFareHandler(fareService),
	}
}

func (d *serviceDeps) router(redisClient *redis.Client, nrApp *newrelic.Application, logger *logrus.Logger, jwtSecret string) http.Handler {
	return app.NewRouter(app.RouterDeps{
		UserHandler:        d.userHandler,
		DriverHandler:      d.driverHandler,
		RideRequestHandler: d.rideRequestHandler,
		RideHandler:        d.rideHandler,
		BookingHandler:     d.bookingHandler,
		PaymentHandler:     d.paymentHandler,
		ReviewHandler:      d.reviewHandler,
		FareHandler:        d.fareHandler,
		RedisClient:        redisClient,
		NewRelicApp:        nrApp,
		Logger:             logger,
		JWTSecret:          jwtSecret,
	})
}
