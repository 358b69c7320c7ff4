package application

import (
	"context"
	"iter"

	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
)

// BookedRange is an approved stay clipped to the queried month. Both ends are inclusive dates.
type BookedRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityService answers which dates of a month are taken by approved bookings.
type AvailabilityService struct {
	repo       bookingDomain.BookingRepository
	properties propertyDomain.PropertyRepository
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(repo bookingDomain.BookingRepository, properties propertyDomain.PropertyRepository) *AvailabilityService {
	return &AvailabilityService{repo: repo, properties: properties}
}

// BookedRanges checks the property, then the period, and returns a sequence of booked
// ranges ordered by check-in. Each iteration queries the store again; nothing is cached.
// A store error is yielded as the final element.
func (s *AvailabilityService) BookedRanges(ctx context.Context, propertyID uuid.UUID, month, year int) (iter.Seq2[BookedRange, error], error) {
	if err := s.RequireProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	first, last, err := bookingDomain.MonthBounds(year, month)
	if err != nil {
		return nil, err
	}

	return func(yield func(BookedRange, error) bool) {
		bookings, err := s.repo.FindApprovedInPeriod(ctx, propertyID, first, last)
		if err != nil {
			yield(BookedRange{}, err)
			return
		}
		for _, bk := range bookings {
			start, end := bk.Dates().Clip(first, last)
			r := BookedRange{
				Start: start.Format(bookingDomain.DateLayout),
				End:   end.Format(bookingDomain.DateLayout),
			}
			if !yield(r, nil) {
				return
			}
		}
	}, nil
}

// RequireProperty returns NOT_FOUND when the property does not exist.
func (s *AvailabilityService) RequireProperty(ctx context.Context, propertyID uuid.UUID) error {
	exists, err := s.properties.Exists(ctx, propertyID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("Property", propertyID.String())
	}
	return nil
}

// ListBookedRanges collects BookedRanges into a slice.
func (s *AvailabilityService) ListBookedRanges(ctx context.Context, propertyID uuid.UUID, month, year int) ([]BookedRange, error) {
	seq, err := s.BookedRanges(ctx, propertyID, month, year)
	if err != nil {
		return nil, err
	}
	ranges := make([]BookedRange, 0)
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
