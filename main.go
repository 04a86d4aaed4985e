package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeservice/config"
	"homeservice/cron"
	"homeservice/database"
	bookingRepo "homeservice/database/repository/booking"
	couponRepo "homeservice/database/repository/coupon"
	feedbackRepo "homeservice/database/repository/feedback"
	serviceRepo "homeservice/database/repository/service"
	userRepo "homeservice/database/repository/user"
	"homeservice/handlers"
	"homeservice/routes"
	"homeservice/services/booking"
	"homeservice/services/catalog"
	"homeservice/services/coupon"
	"homeservice/services/feedback"
	"homeservice/services/notification"
	"homeservice/services/payment"
	"homeservice/services/user"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	db := database.Database()
	cacheClient := utils.GetCacheClient()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// repositories.
	users := userRepo.NewMongoUserRepo(db)
	services := serviceRepo.NewMongoServiceRepo(db)
	coupons := couponRepo.NewMongoCouponRepo(db)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	feedbacks := feedbackRepo.NewMongoFeedbackRepo(db)

	indexCtx, cancelIndexes := context.WithTimeout(rootCtx, 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"users":     users.EnsureIndexes,
		"services":  services.EnsureIndexes,
		"coupons":   coupons.EnsureIndexes,
		"bookings":  bookings.EnsureIndexes,
		"feedbacks": feedbacks.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Fatal("main: failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cancelIndexes()

	stripe.Key = config.AppConfig.StripeKey
	gateway, err := payment.NewGatewayFromConfig(config.AppConfig)
	if err != nil {
		logger.Fatal("main: failed to configure payment gateway", zap.Error(err))
	}

	var notifier notification.NotificationService = notification.NoopNotifier{}
	if config.AppConfig.FirebaseCredentialsFile != "" {
		fcm, err := utils.NewFCMClient(rootCtx, config.AppConfig.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: failed to initialize firebase messaging", zap.Error(err))
		}
		if notifier, err = notification.NewFCMNotificationService(fcm, users, logger); err != nil {
			logger.Fatal("main: failed to initialize notification service", zap.Error(err))
		}
	} else {
		logger.Warn("main: FIREBASE_CREDENTIALS_FILE not set; push notifications disabled")
	}

	taskClient := asynq.NewClient(cron.RedisOpt())
	defer taskClient.Close()

	// services.
	userService := &user.DefaultUserService{
		Repo:     users,
		Logger:   logger,
		TokenTTL: config.TokenTTL(),
	}
	catalogService := &catalog.DefaultCatalogService{
		Repo:   services,
		Cache:  utils.NewRedisJSONCache(cacheClient, "catalog"),
		Logger: logger,
	}
	couponService := coupon.NewCouponService(coupons, logger)
	bookingService := &booking.DefaultBookingService{
		Repo:       bookings,
		Services:   services,
		Users:      users,
		Coupons:    couponService,
		Logger:     logger,
		Location:   config.Location(),
		PendingTTL: config.PendingTTL(),
	}
	paymentService := &payment.DefaultPaymentService{
		Bookings:       bookings,
		Gateway:        gateway,
		Coupons:        couponService,
		Tasks:          taskClient,
		Notifier:       notifier,
		Logger:         logger,
		Currency:       config.AppConfig.Currency,
		SupportContact: config.AppConfig.SupportContact,
		WebhookSecret:  config.AppConfig.StripeWebhookKey,
	}
	feedbackService := &feedback.DefaultFeedbackService{
		Repo:     feedbacks,
		Bookings: bookings,
		Ratings:  services,
		Cache:    utils.NewRedisJSONCache(cacheClient, "feedback"),
		Logger:   logger,
	}

	worker, err := cron.NewWorker(couponService, bookingService, logger)
	if err != nil {
		logger.Fatal("main: failed to configure background worker", zap.Error(err))
	}
	worker.Start()
	utils.StartHealthMonitor(rootCtx, cacheClient, database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		User:     handlers.NewUserHandler(userService),
		Catalog:  handlers.NewCatalogHandler(catalogService),
		Coupon:   handlers.NewCouponHandler(couponService, bookingService),
		Booking:  handlers.NewBookingHandler(bookingService),
		Payment:  handlers.NewPaymentHandler(paymentService),
		Feedback: handlers.NewFeedbackHandler(feedbackService),
		Health:   &handlers.HealthHandler{},
	}

	router := gin.New()
	routes.RegisterRoutes(router, handlerBundle, logger, config.AppConfig.MaxRequestsPerMin)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("gateway", gateway.Name()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	stopBackground()
	worker.Stop()
	if err := cacheClient.Close(); err != nil {
		logger.Warn("main: failed to close redis", zap.Error(err))
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect mongo", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
