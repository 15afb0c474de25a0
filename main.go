// File: quickbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickbook/config"
	"quickbook/cron"
	"quickbook/database"
	intentRepo "quickbook/database/repository/intent"
	leadRepo "quickbook/database/repository/lead"
	tenantRepo "quickbook/database/repository/tenant"
	"quickbook/handlers"
	"quickbook/middleware"
	"quickbook/routes"
	"quickbook/services/booking"
	ai "quickbook/services/intelligence"
	"quickbook/services/notification"
	"quickbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	utils.InitContextCache()
	utils.FirebaseInit()
	utils.StartHealthMonitor(utils.GetContextCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, config.TrustedProxyList()))

	// repositories.
	db := database.GetDatabase()
	intents := intentRepo.NewMongoIntentRepo(db)
	leads := leadRepo.NewMongoLeadRepo(db)
	settings := tenantRepo.NewMongoSettingsRepo(db)

	// staff notifications.
	notificationService, err := notification.NewDefaultNotificationService(
		notification.NewRetrier(retryConfigFromEnv()),
		logger,
		configuredSenders()...,
	)
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	inline := notification.NewInlineDispatcher(notificationService, logger)
	var dispatcher booking.Dispatcher = inline
	var worker *asynq.Server
	var queueClient *asynq.Client
	if config.AppConfig.NotifyAsync {
		queueClient = asynq.NewClient(cron.QueueRedisOpt())
		dispatcher = notification.NewQueueDispatcher(queueClient, inline, logger)
		worker = cron.InitNotificationWorker(notificationService, logger)
	}

	// services.
	ttl := time.Duration(config.AppConfig.ChatContextTTLMin) * time.Minute
	ctxStore := ai.NewRedisContextStore(utils.GetContextCacheClient(), ttl)

	intentService, err := booking.NewDefaultIntentService(
		intents, leads, settings,
		booking.NewPolicyResolver(booking.HTTPSValidator{}),
		dispatcher,
		ctxStore,
		logger,
	)
	if err != nil {
		logger.Fatal("main: failed to initialize intent service", zap.Error(err))
	}

	chatService := ai.NewDefaultChatIntentService(ctxStore, logger)

	intentHandler := handlers.NewIntentHandler(intentService, logger)
	chatHandler := handlers.NewChatIntentHandler(chatService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Quick-book endpoints.
		StartIntentHandler:   intentHandler.StartIntentHandler,
		AttachContactHandler: intentHandler.AttachContactHandler,
		ClickHandler:         intentHandler.ClickHandler,
		CompleteHandler:      intentHandler.CompleteHandler,
		GetIntentHandler:     intentHandler.GetIntentHandler,
		ExportIntentsHandler: intentHandler.ExportIntentsHandler,

		// Chat endpoints.
		DetectBookingIntentHandler: chatHandler.DetectBookingIntentHandler,

		// Operational endpoints.
		HealthHandler:  handlers.HealthHandler,
		MetricsHandler: gin.WrapH(promhttp.Handler()),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			logger.Sugar().Warnf("main: failed to close queue client: %v", err)
		}
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func retryConfigFromEnv() notification.RetryConfig {
	cfg := config.AppConfig
	return notification.RetryConfig{
		BaseDelay:     time.Duration(cfg.NotifyBaseDelayMs) * time.Millisecond,
		Multiplier:    cfg.NotifyMultiplier,
		MaxDelay:      time.Duration(cfg.NotifyMaxDelayMs) * time.Millisecond,
		JitterPercent: cfg.NotifyJitterPercent,
		MaxRetries:    cfg.NotifyMaxRetries,
	}
}

// configuredSenders returns one sender per channel that has credentials.
func configuredSenders() []notification.Sender {
	cfg := config.AppConfig
	var senders []notification.Sender

	if s := notification.NewEmailSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}); s != nil {
		senders = append(senders, s)
	}
	if s := notification.NewSMSSender(notification.SMSConfig{
		GatewayURL: cfg.SMSGatewayURL,
		APIKey:     cfg.SMSAPIKey,
		From:       cfg.SMSFrom,
	}, nil); s != nil {
		senders = append(senders, s)
	}
	if s := notification.NewPushSender(utils.FCMClient); s != nil {
		senders = append(senders, s)
	}
	return senders
}
