// Package contracts defines the topics and payloads exchanged over Kafka.
package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents  = "villa.booking.events"
	TopicCalendarSync   = "villa.calendar.sync"
	TopicPropertyEvents = "villa.property.events"
)

// Event types.
const (
	BookingRequested      = "booking.requested"
	BookingStatusChanged  = "booking.status_changed"
	CalendarSyncRequested = "calendar.sync.requested"
	PropertyCreated       = "property.created"
	PropertyAgentAssigned = "property.agent_assigned"
	PropertyStatusChanged = "property.status_changed"
)

// BookingRequestedEvent is published when a guest submits a booking.
type BookingRequestedEvent struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	PropertyID    uuid.UUID  `json:"property_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	CheckIn       string     `json:"check_in"`
	CheckOut      string     `json:"check_out"`
	TotalPrice    int64      `json:"total_price_cents"`
	Currency      string     `json:"currency"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after a committed status change.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	PropertyID    uuid.UUID `json:"property_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	CalendarSync  string    `json:"calendar_sync"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// CalendarSyncRequestedEvent asks the booking service to reconcile a booking's calendar event.
// EventID is set when an event was created but its reference could not be saved.
type CalendarSyncRequestedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	EventID    string    `json:"event_id,omitempty"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PropertyEvent covers property lifecycle notifications.
type PropertyEvent struct {
	PropertyID uuid.UUID  `json:"property_id"`
	Status     string     `json:"status"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
