package application

import (
	"context"
	"io"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/google/uuid"
)

// Actor is the authenticated caller, with its role already resolved to capabilities.
type Actor struct {
	UserID       uuid.UUID
	Capabilities auth.Capability
}

// Can reports whether the actor holds every capability in want.
func (a Actor) Can(want auth.Capability) bool {
	return a.Capabilities.Has(want)
}

// TxManager runs fn in one transaction that holds an exclusive lock on the property row.
// Repositories called with the ctx passed to fn join that transaction.
type TxManager interface {
	WithinPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context) error) error
}

// CalendarEvent describes the all-day block written to the external calendar for a stay.
type CalendarEvent struct {
	PropertyTitle string
	BookingNumber string
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	CheckIn       time.Time
	CheckOut      time.Time
}

// CalendarService is the external calendar. Implementations treat an empty calendarID as "no calendar"
// and create nothing.
type CalendarService interface {
	CreateEvent(ctx context.Context, calendarID string, event CalendarEvent) (string, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) (bool, error)
	CreatePropertyCalendar(ctx context.Context, title string) (string, error)
}

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, evt kafka.CloudEvent) error
}

// MediaStore stores uploaded files and returns their public URL.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
