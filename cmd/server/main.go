package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eastmond-villas/service-booking/internal/application"
	"github.com/eastmond-villas/service-booking/internal/calendar"
	"github.com/eastmond-villas/service-booking/internal/config"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	bookingEvents "github.com/eastmond-villas/service-booking/internal/events"
	"github.com/eastmond-villas/service-booking/internal/handler"
	"github.com/eastmond-villas/service-booking/internal/repository"
	"github.com/eastmond-villas/service-booking/internal/storage"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/health"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/eastmond-villas/service-booking/pkg/logger"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.PropertyModel{},
			&repository.BookingModel{},
			&repository.MediaModel{},
			&repository.DailyAnalyticsModel{},
			&repository.ReviewModel{},
			&repository.FavoriteModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	propertyRepo := repository.NewGormPropertyRepository(db)
	mediaRepo := repository.NewGormMediaRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	favoriteRepo := repository.NewGormFavoriteRepository(db)
	counters := repository.NewGormCounterStore(db)
	txManager := repository.NewGormTxManager(db)

	// External calendar
	var calendarService application.CalendarService = calendar.Noop{}
	if cfg.CalendarConfig.Enabled() {
		googleCalendar, err := calendar.NewGoogleCalendar(ctx,
			cfg.CalendarConfig.CredentialsFile,
			cfg.CalendarConfig.TimeZone,
			log.Named("calendar"),
		)
		if err != nil {
			log.Fatal("failed to initialize calendar", zap.Error(err))
		}
		calendarService = googleCalendar
	} else {
		log.Warn("calendar sync disabled, approved stays will not be published")
	}

	// Media storage; uploads are rejected when unset
	var mediaStore application.MediaStore
	if cfg.S3Config.Enabled() {
		store, err := storage.NewS3MediaStore(
			cfg.S3Config.Endpoint,
			cfg.S3Config.UseSSL,
			cfg.S3Config.AccessKey,
			cfg.S3Config.SecretKey,
			cfg.S3Config.Bucket,
			cfg.S3Config.PublicURL,
			log.Named("storage"),
		)
		if err != nil {
			log.Fatal("failed to initialize media storage", zap.Error(err))
		}
		mediaStore = store
	}

	clock := application.SystemClock{}

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		propertyRepo,
		counters,
		txManager,
		calendarService,
		bookingDomain.NewNightlyPricingStrategy(),
		kafkaProducer,
		clock,
		log,
	)
	availabilityService := application.NewAvailabilityService(bookingRepo, propertyRepo)
	propertyService := application.NewPropertyService(
		propertyRepo,
		counters,
		calendarService,
		kafkaProducer,
		clock,
		log,
	)
	mediaService := application.NewMediaService(mediaRepo, propertyRepo, mediaStore, log)
	reviewService := application.NewReviewService(reviewRepo, propertyRepo, clock, log)
	favoriteService := application.NewFavoriteService(favoriteRepo, propertyRepo, log)

	// Initialize and start calendar sync consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	calendarConsumer := bookingEvents.NewCalendarSyncConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = calendarConsumer.Close() }()

	go func() {
		log.Info("starting calendar sync consumer")
		if err := calendarConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("calendar sync consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPropertyHandler(propertyService, availabilityService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewMediaHandler(mediaService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewReviewHandler(reviewService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewFavoriteHandler(favoriteService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      otelhttp.NewHandler(router, "service-booking"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
