package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	propertyID    uuid.UUID
	userID        *uuid.UUID
	guest         GuestContact
	dates         DateRange
	status        BookingStatus

	totalPriceCents int64
	currency        string
	calendarEventID string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// GuardCheck runs the check named by a transition's guard. Returning an error aborts the transition.
type GuardCheck func(guard Guard, b *Booking) error

// generateBookingNumber creates a booking number in the format "EV-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "EV-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
// No overlap check happens here; several pending requests may cover the same dates.
func NewBooking(
	propertyID uuid.UUID,
	userID *uuid.UUID,
	guest GuestContact,
	checkIn, checkOut time.Time,
	totalPriceCents int64,
	currency string,
	now time.Time,
) (*Booking, error) {
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	if err := ValidateDateRange(checkIn, checkOut, now); err != nil {
		return nil, err
	}
	if err := guest.Validate(); err != nil {
		return nil, err
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		propertyID:      propertyID,
		userID:          userID,
		guest:           guest,
		dates:           NewDateRange(checkIn, checkOut),
		status:          StatusPending,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	propertyID uuid.UUID,
	userID *uuid.UUID,
	guest GuestContact,
	dates DateRange,
	status BookingStatus,
	totalPriceCents int64,
	currency string,
	calendarEventID string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		propertyID:      propertyID,
		userID:          userID,
		guest:           guest,
		dates:           dates,
		status:          status,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		calendarEventID: calendarEventID,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// PropertyID returns the booked property.
func (b *Booking) PropertyID() uuid.UUID { return b.propertyID }

// UserID returns the requester, or nil for an anonymous request.
func (b *Booking) UserID() *uuid.UUID { return b.userID }

// Guest returns the guest contact details.
func (b *Booking) Guest() GuestContact { return b.guest }

// Dates returns the stay.
func (b *Booking) Dates() DateRange { return b.dates }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// TotalPriceCents returns the price of the stay in cents.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// CalendarEventID returns the external calendar event reference, empty when none exists.
func (b *Booking) CalendarEventID() string { return b.calendarEventID }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsRequestedBy reports whether userID made this booking.
func (b *Booking) IsRequestedBy(userID uuid.UUID) bool {
	return b.userID != nil && *b.userID == userID
}

// ChangeStatus moves the booking to target. A target equal to the current status is a no-op
// and reports changed=false. check runs before anything is mutated; its error is returned as is.
func (b *Booking) ChangeStatus(target BookingStatus, now time.Time, check GuardCheck) (bool, error) {
	if !target.IsValid() {
		return false, domain.New(domain.CodeInvalidStatus, fmt.Sprintf("invalid booking status: %q", target))
	}
	if target == b.status {
		return false, nil
	}

	guard, ok := b.status.TransitionTo(target)
	if !ok {
		return false, domain.NewInvalidStateError(string(b.status), string(target))
	}
	if check != nil {
		if err := check(guard, b); err != nil {
			return false, err
		}
	}

	b.status = target
	b.updatedAt = now.UTC()
	return true, nil
}

// SetCalendarEvent records the external calendar event created for this stay.
func (b *Booking) SetCalendarEvent(eventID string, now time.Time) {
	b.calendarEventID = eventID
	b.updatedAt = now.UTC()
}

// ClearCalendarEvent drops the calendar event reference.
func (b *Booking) ClearCalendarEvent(now time.Time) {
	b.calendarEventID = ""
	b.updatedAt = now.UTC()
}

// NeedsCalendarEvent reports whether an approved booking is missing its event.
func (b *Booking) NeedsCalendarEvent() bool {
	return b.status == StatusApproved && b.calendarEventID == ""
}

// HasStaleCalendarEvent reports whether a booking that left approved still holds an event.
func (b *Booking) HasStaleCalendarEvent() bool {
	return b.status != StatusApproved && b.calendarEventID != ""
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
