package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/contracts"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSyncer struct {
	calls   []uuid.UUID
	pending []string
	err     error
}

func (s *recordingSyncer) SyncCalendar(_ context.Context, id uuid.UUID, pendingEventID string) error {
	s.calls = append(s.calls, id)
	s.pending = append(s.pending, pendingEventID)
	return s.err
}

func message(t *testing.T, eventType string, data any) kafkago.Message {
	t.Helper()
	evt, err := kafka.NewCloudEvent("service-booking", eventType, "key", data)
	require.NoError(t, err)
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func newTestConsumer(syncer CalendarSyncer) *CalendarSyncConsumer {
	return &CalendarSyncConsumer{syncer: syncer, logger: zap.NewNop()}
}

func TestCalendarSyncConsumer_SyncsRequestedBooking(t *testing.T) {
	syncer := &recordingSyncer{}
	c := newTestConsumer(syncer)
	bookingID := uuid.New()

	err := c.handleMessage(context.Background(), message(t, contracts.CalendarSyncRequested, contracts.CalendarSyncRequestedEvent{
		BookingID:  bookingID,
		EventID:    "evt-9",
		Reason:     "calendar unavailable",
		OccurredAt: time.Now(),
	}))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bookingID}, syncer.calls)
	assert.Equal(t, []string{"evt-9"}, syncer.pending)
}

func TestCalendarSyncConsumer_ReturnsErrorForRetry(t *testing.T) {
	syncer := &recordingSyncer{err: errors.New("still down")}
	c := newTestConsumer(syncer)

	err := c.handleMessage(context.Background(), message(t, contracts.CalendarSyncRequested, contracts.CalendarSyncRequestedEvent{BookingID: uuid.New()}))
	assert.Error(t, err)
}

func TestCalendarSyncConsumer_SkipsWhatCannotSucceed(t *testing.T) {
	syncer := &recordingSyncer{err: domain.NewNotFoundError("Booking", "x")}
	c := newTestConsumer(syncer)

	assert.NoError(t, c.handleMessage(context.Background(), message(t, contracts.CalendarSyncRequested, contracts.CalendarSyncRequestedEvent{BookingID: uuid.New()})))
	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("{not json")}))
	assert.NoError(t, c.handleMessage(context.Background(), message(t, contracts.BookingRequested, map[string]string{})))
	assert.Len(t, syncer.calls, 1)
}
