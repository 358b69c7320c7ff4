package events

import (
	"context"

	"github.com/eastmond-villas/service-booking/pkg/contracts"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CalendarSyncer reconciles the calendar event of one booking.
type CalendarSyncer interface {
	SyncCalendar(ctx context.Context, bookingID uuid.UUID, pendingEventID string) error
}

// CalendarSyncConsumer retries calendar side effects that failed after a status change.
type CalendarSyncConsumer struct {
	consumer *kafka.Consumer
	syncer   CalendarSyncer
	logger   *zap.Logger
}

// NewCalendarSyncConsumer creates a new CalendarSyncConsumer on the calendar sync topic.
func NewCalendarSyncConsumer(
	brokers []string,
	groupID string,
	syncer CalendarSyncer,
	logger *zap.Logger,
) *CalendarSyncConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicCalendarSync, logger)
	return &CalendarSyncConsumer{
		consumer: consumer,
		syncer:   syncer,
		logger:   logger,
	}
}

// Start begins consuming sync requests. This blocks until the context is cancelled.
func (c *CalendarSyncConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CalendarSyncConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CalendarSyncConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from calendar sync topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.CalendarSyncRequested:
		return c.handleSyncRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled calendar event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CalendarSyncConsumer) handleSyncRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.CalendarSyncRequestedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse CalendarSyncRequestedEvent data", zap.Error(err))
		return nil
	}

	c.logger.Info("retrying calendar sync",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("event_id", evt.EventID),
		zap.String("reason", evt.Reason),
	)

	if err := c.syncer.SyncCalendar(ctx, evt.BookingID, evt.EventID); err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			c.logger.Warn("booking for calendar sync no longer exists",
				zap.String("booking_id", evt.BookingID.String()),
			)
			return nil
		}
		c.logger.Error("calendar sync retry failed",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
