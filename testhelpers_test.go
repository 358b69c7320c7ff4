//go:build integration

package main_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/eastmond-villas/service-booking/internal/application"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	bookingEvents "github.com/eastmond-villas/service-booking/internal/events"
	"github.com/eastmond-villas/service-booking/internal/repository"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/contracts"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up service components backed by the real database.
type bookingStack struct {
	Bookings        *application.BookingService
	Availability    *application.AvailabilityService
	Properties      *application.PropertyService
	Reviews         *application.ReviewService
	Favorites       *application.FavoriteService
	Counters        *repository.GormCounterStore
	Calendar        *flakyCalendar
	Consumer        *bookingEvents.CalendarSyncConsumer
	CleanupProducer func()
}

// fixedClock pins "today" so stay dates in tests never drift into the past.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// flakyCalendar fails the next failCreates event creations, then succeeds.
type flakyCalendar struct {
	mu          sync.Mutex
	failCreates int
	created     int
	deleted     int
}

func (c *flakyCalendar) CreateEvent(_ context.Context, calendarID string, _ application.CalendarEvent) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failCreates > 0 {
		c.failCreates--
		return "", errors.New("calendar unavailable")
	}
	c.created++
	return fmt.Sprintf("%s-evt-%d", calendarID, c.created), nil
}

func (c *flakyCalendar) DeleteEvent(context.Context, string, string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted++
	return true, nil
}

func (c *flakyCalendar) CreatePropertyCalendar(_ context.Context, title string) (string, error) {
	return "cal-" + title, nil
}

func (c *flakyCalendar) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failCreates = n
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a migrated GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pgConfig := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Int(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(pgConfig.DSN()), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	// Apply the real migrations rather than AutoMigrate so the SQL files stay honest.
	require.NoError(t, database.RunMigrations(pgConfig.DatabaseURL(), "migrations", zap.NewNop()))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers,
		contracts.TopicBookingEvents,
		contracts.TopicCalendarSync,
		contracts.TopicPropertyEvents,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the services the way cmd/server does.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	propertyRepo := repository.NewGormPropertyRepository(db)
	counters := repository.NewGormCounterStore(db)
	txManager := repository.NewGormTxManager(db)
	calendar := &flakyCalendar{}
	producer := kafka.NewProducer(brokers, logger)
	clock := fixedClock{now: testNow}

	bookingSvc := application.NewBookingService(
		bookingRepo,
		propertyRepo,
		counters,
		txManager,
		calendar,
		bookingDomain.NewNightlyPricingStrategy(),
		producer,
		clock,
		logger,
	)
	propertySvc := application.NewPropertyService(propertyRepo, counters, calendar, producer, clock, logger)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewCalendarSyncConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Bookings:        bookingSvc,
		Availability:    application.NewAvailabilityService(bookingRepo, propertyRepo),
		Properties:      propertySvc,
		Reviews:         application.NewReviewService(repository.NewGormReviewRepository(db), propertyRepo, clock, logger),
		Favorites:       application.NewFavoriteService(repository.NewGormFavoriteRepository(db), propertyRepo, logger),
		Counters:        counters,
		Calendar:        calendar,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

func managerActor() application.Actor {
	return application.Actor{UserID: uuid.New(), Capabilities: auth.CapabilitiesFor(auth.RoleManager)}
}

func customerActor() application.Actor {
	return application.Actor{UserID: uuid.New(), Capabilities: auth.CapabilitiesFor(auth.RoleCustomer)}
}

// seedPublishedProperty creates and publishes a rentable listing through the service.
func seedPublishedProperty(t *testing.T, stack *bookingStack, title string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	manager := managerActor()

	created, err := stack.Properties.CreateProperty(ctx, manager, application.CreatePropertyRequest{
		Title:            title,
		City:             "Tulum",
		ListingType:      "rent",
		NightlyRateCents: 25000,
		MaxGuests:        6,
		Bedrooms:         3,
		Bathrooms:        2,
	})
	require.NoError(t, err, "failed to create property")

	_, err = stack.Properties.PublishProperty(ctx, manager, created.ID)
	require.NoError(t, err, "failed to publish property")
	return created.ID
}

// requestStay creates a pending booking for the given nights.
func requestStay(t *testing.T, stack *bookingStack, propertyID uuid.UUID, checkIn, checkOut string) uuid.UUID {
	t.Helper()
	dto, err := stack.Bookings.CreateBooking(context.Background(), customerActor(), application.CreateBookingRequest{
		PropertyID: propertyID,
		FullName:   "Ana Reyes",
		Email:      "ana@example.com",
		Phone:      "+1 555 0100",
		Guests:     2,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	require.NoError(t, err, "failed to request stay")
	return dto.ID
}

// waitForCalendarEvent polls the bookings table until the booking has a calendar event.
func waitForCalendarEvent(t *testing.T, db *gorm.DB, bookingID uuid.UUID, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.CalendarEventID != "" {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking %s never got a calendar event", bookingID)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
