package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows booking listings. Zero values mean "any".
type ListFilter struct {
	Status     BookingStatus
	PropertyID uuid.UUID
	// Search matches guest name, email or phone, or an exact check-in/check-out date when it
	// parses as YYYY-MM-DD.
	Search string
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByUserID retrieves bookings made by a specific user with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// FindApprovedByProperty returns every approved booking of a property.
	FindApprovedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error)

	// FindApprovedInPeriod returns approved bookings whose stay touches [start, end], ordered by check-in.
	FindApprovedInPeriod(ctx context.Context, propertyID uuid.UUID, start, end time.Time) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
