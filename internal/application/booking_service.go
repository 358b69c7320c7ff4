package application

import (
	"context"
	"fmt"
	"time"

	"github.com/eastmond-villas/service-booking/internal/domain/analytics"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/contracts"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceSource = "service-booking"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	FullName   string    `json:"full_name" binding:"required"`
	Email      string    `json:"email" binding:"required,email"`
	Phone      string    `json:"phone" binding:"required"`
	Guests     int       `json:"guests" binding:"required,min=1"`
	CheckIn    string    `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut   string    `json:"check_out" binding:"required,datetime=2006-01-02"`
	Notes      string    `json:"notes"`
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingNumber   string     `json:"booking_number"`
	PropertyID      uuid.UUID  `json:"property_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Guests          int        `json:"guests"`
	Notes           string     `json:"notes,omitempty"`
	CheckIn         string     `json:"check_in"`
	CheckOut        string     `json:"check_out"`
	Nights          int        `json:"nights"`
	Status          string     `json:"status"`
	TotalPriceCents int64      `json:"total_price_cents"`
	Currency        string     `json:"currency"`
	CalendarEventID string     `json:"calendar_event_id,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TransitionResult is the outcome of UpdateStatus. Changed is false for a no-op request.
type TransitionResult struct {
	Booking  BookingDTO
	Changed  bool
	Calendar CalendarSyncResult
}

// BookingListQuery carries the optional list filters.
type BookingListQuery struct {
	Status     string
	PropertyID uuid.UUID
	Search     string
	Page       int
	Limit      int
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo       bookingDomain.BookingRepository
	properties propertyDomain.PropertyRepository
	counters   analytics.CounterStore
	tx         TxManager
	calendar   CalendarService
	pricing    bookingDomain.PricingStrategy
	publisher  EventPublisher
	clock      Clock
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	properties propertyDomain.PropertyRepository,
	counters analytics.CounterStore,
	tx TxManager,
	calendar CalendarService,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	clock Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		properties: properties,
		counters:   counters,
		tx:         tx,
		calendar:   calendar,
		pricing:    pricing,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// CreateBooking records a pending stay request. Dates are validated but not checked for
// overlap; several pending requests may compete for the same nights.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingDTO, error) {
	checkIn, err := bookingDomain.ParseDate(req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := bookingDomain.ParseDate(req.CheckOut)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := bookingDomain.ValidateDateRange(checkIn, checkOut, now); err != nil {
		return nil, err
	}

	prop, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsBookable() {
		return nil, domain.NewValidationError("property is not accepting bookings")
	}
	if req.Guests > prop.Capacity().MaxGuests {
		return nil, domain.NewValidationError(fmt.Sprintf("property sleeps at most %d guests", prop.Capacity().MaxGuests))
	}

	dates := bookingDomain.NewDateRange(checkIn, checkOut)
	totalCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
		NightlyRateCents: prop.NightlyRateCents(),
		Dates:            dates,
	})
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	var userID *uuid.UUID
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		userID = &id
	}

	bk, err := bookingDomain.NewBooking(
		prop.ID(),
		userID,
		bookingDomain.GuestContact{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Guests:   req.Guests,
			Notes:    req.Notes,
		},
		checkIn,
		checkOut,
		totalCents,
		prop.Currency(),
		now,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	if err := s.counters.Increment(ctx, prop.ID(), now, analytics.FieldInquiries); err != nil {
		s.logger.Warn("failed to record inquiry",
			zap.String("property_id", prop.ID().String()),
			zap.Error(err),
		)
	}

	s.publishEvent(ctx, contracts.TopicBookingEvents, contracts.BookingRequested, bk.ID().String(), contracts.BookingRequestedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		PropertyID:    bk.PropertyID(),
		UserID:        bk.UserID(),
		CheckIn:       bk.Dates().CheckIn.Format(bookingDomain.DateLayout),
		CheckOut:      bk.Dates().CheckOut.Format(bookingDomain.DateLayout),
		TotalPrice:    bk.TotalPriceCents(),
		Currency:      bk.Currency(),
		OccurredAt:    now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateStatus moves a booking to the requested status.
//
// Entering approved runs the overlap check, the status write and the "bookings" counter
// increment in one transaction holding the property lock, so two overlapping approvals for
// the same property cannot both commit. The calendar is updated after commit; a calendar
// failure is reported in the result and queued for retry, never returned as an error.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID uuid.UUID, rawStatus string) (*TransitionResult, error) {
	if rawStatus == "" {
		return nil, domain.NewValidationError("status is required")
	}
	target, err := bookingDomain.ParseBookingStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(actor, bk, target); err != nil {
		return nil, err
	}

	var (
		previous bookingDomain.BookingStatus
		changed  bool
	)
	err = s.tx.WithinPropertyLock(ctx, bk.PropertyID(), func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}
		previous = current.Status()
		now := s.clock.Now()

		changed, err = current.ChangeStatus(target, now, s.guardCheck(txCtx))
		if err != nil || !changed {
			bk = current
			return err
		}

		current.IncrementVersion()
		if err := s.repo.Update(txCtx, current); err != nil {
			return err
		}
		if target == bookingDomain.StatusApproved {
			if err := s.counters.Increment(txCtx, current.PropertyID(), now, analytics.FieldBookings); err != nil {
				return fmt.Errorf("failed to increment bookings counter: %w", err)
			}
		}
		bk = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Changed: changed, Calendar: CalendarSyncResult{Action: CalendarActionNone}}
	if !changed {
		result.Booking = toBookingDTO(bk)
		return result, nil
	}

	result.Calendar = s.reconcileCalendar(ctx, bk)
	if result.Calendar.Failed() {
		s.logger.Warn("calendar sync failed, queued for retry",
			zap.String("booking_id", bk.ID().String()),
			zap.String("action", string(result.Calendar.Action)),
			zap.Error(result.Calendar.Err),
		)
		req := contracts.CalendarSyncRequestedEvent{
			BookingID:  bk.ID(),
			Reason:     result.Calendar.Err.Error(),
			OccurredAt: s.clock.Now(),
		}
		if result.Calendar.Action == CalendarActionCreate {
			req.EventID = result.Calendar.EventID
		}
		s.publishEvent(ctx, contracts.TopicCalendarSync, contracts.CalendarSyncRequested, bk.ID().String(), req)
	}

	s.publishEvent(ctx, contracts.TopicBookingEvents, contracts.BookingStatusChanged, bk.ID().String(), contracts.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		PropertyID:    bk.PropertyID(),
		From:          string(previous),
		To:            string(bk.Status()),
		ChangedBy:     actor.UserID,
		CalendarSync:  result.Calendar.Status(),
		OccurredAt:    s.clock.Now(),
	})

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("from", string(previous)),
		zap.String("to", string(bk.Status())),
	)

	result.Booking = toBookingDTO(bk)
	if result.Calendar.Attempted() {
		// The calendar reference is saved in its own transaction.
		if fresh, err := s.repo.FindByID(ctx, bk.ID()); err == nil {
			result.Booking = toBookingDTO(fresh)
		}
	}
	return result, nil
}

// CancelBooking is the requester's shortcut for UpdateStatus(..., "cancelled").
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*TransitionResult, error) {
	return s.UpdateStatus(ctx, actor, bookingID, string(bookingDomain.StatusCancelled))
}

// SyncCalendar brings a booking's calendar event in line with its status: an approved booking
// gets its missing event, a booking that left approved loses its stale one. pendingEventID is
// an event created earlier whose reference was never saved; it is adopted or deleted rather
// than created again. Errors are returned so the caller can retry.
func (s *BookingService) SyncCalendar(ctx context.Context, bookingID uuid.UUID, pendingEventID string) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if pendingEventID != "" {
		prop, err := s.properties.FindByID(ctx, bk.PropertyID())
		if err != nil {
			return err
		}
		if err := s.adoptCalendarEvent(ctx, bk, prop.CalendarID(), pendingEventID); err != nil {
			return fmt.Errorf("calendar create for booking %s: %w", bk.ID(), err)
		}
		if bk, err = s.repo.FindByID(ctx, bookingID); err != nil {
			return err
		}
	}

	res := s.reconcileCalendar(ctx, bk)
	if res.Failed() {
		return fmt.Errorf("calendar %s for booking %s: %w", res.Action, bk.ID(), res.Err)
	}
	return nil
}

// GetBooking returns a booking to its requester or to a booking manager.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Can(auth.CapManageBookings) && !bk.IsRequestedBy(actor.UserID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings lists every booking for managers and the caller's own bookings otherwise.
func (s *BookingService) ListBookings(ctx context.Context, actor Actor, q BookingListQuery) (*domain.PaginatedResult[BookingDTO], error) {
	filter, err := q.toFilter()
	if err != nil {
		return nil, err
	}

	var (
		bookings []*bookingDomain.Booking
		total    int64
	)
	if actor.Can(auth.CapManageBookings) {
		bookings, total, err = s.repo.ListAll(ctx, filter, q.Page, q.Limit)
	} else {
		bookings, total, err = s.repo.FindByUserID(ctx, actor.UserID, filter, q.Page, q.Limit)
	}
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, q.Page, q.Limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, q BookingListQuery) ([]BookingDTO, int64, error) {
	filter, err := q.toFilter()
	if err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.repo.ListAll(ctx, filter, q.Page, q.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	byStatus := make(map[string]int64, len(counts))
	for _, st := range bookingDomain.AllStatuses() {
		byStatus[string(st)] = 0
	}
	var total int64
	for status, c := range counts {
		byStatus[status] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// --- Helpers ---

// authorizeTransition lets booking managers make any change and lets a requester cancel
// their own booking.
func authorizeTransition(actor Actor, bk *bookingDomain.Booking, target bookingDomain.BookingStatus) error {
	if actor.Can(auth.CapManageBookings) {
		return nil
	}
	if target == bookingDomain.StatusCancelled && bk.IsRequestedBy(actor.UserID) {
		return nil
	}
	return domain.NewForbiddenError(fmt.Sprintf("not allowed to set booking status to %s", target))
}

// guardCheck evaluates transition guards against the state visible inside the locked transaction.
func (s *BookingService) guardCheck(txCtx context.Context) bookingDomain.GuardCheck {
	return func(guard bookingDomain.Guard, bk *bookingDomain.Booking) error {
		if guard != bookingDomain.GuardOverlap {
			return nil
		}
		approved, err := s.repo.FindApprovedByProperty(txCtx, bk.PropertyID())
		if err != nil {
			return fmt.Errorf("failed to load approved bookings: %w", err)
		}
		if conflict := bookingDomain.FindConflict(approved, bk.Dates(), bk.ID()); conflict != nil {
			return domain.New(domain.CodeDateConflict, fmt.Sprintf(
				"dates %s to %s overlap approved booking %s",
				bk.Dates().CheckIn.Format(bookingDomain.DateLayout),
				bk.Dates().CheckOut.Format(bookingDomain.DateLayout),
				conflict.BookingNumber(),
			))
		}
		return nil
	}
}

// reconcileCalendar creates or deletes the booking's calendar event and persists the new
// reference. It never returns an error; failures are carried in the result.
func (s *BookingService) reconcileCalendar(ctx context.Context, bk *bookingDomain.Booking) CalendarSyncResult {
	switch {
	case bk.NeedsCalendarEvent():
		res := CalendarSyncResult{Action: CalendarActionCreate}
		prop, err := s.properties.FindByID(ctx, bk.PropertyID())
		if err != nil {
			res.Err = err
			return res
		}
		eventID, err := s.calendar.CreateEvent(ctx, prop.CalendarID(), CalendarEvent{
			PropertyTitle: prop.Title(),
			BookingNumber: bk.BookingNumber(),
			GuestName:     bk.Guest().FullName,
			GuestEmail:    bk.Guest().Email,
			GuestPhone:    bk.Guest().Phone,
			CheckIn:       bk.Dates().CheckIn,
			CheckOut:      bk.Dates().CheckOut,
		})
		if err != nil {
			res.Err = err
			return res
		}
		res.EventID = eventID
		if eventID == "" {
			return res
		}
		res.Err = s.adoptCalendarEvent(ctx, bk, prop.CalendarID(), eventID)
		return res

	case bk.HasStaleCalendarEvent():
		res := CalendarSyncResult{Action: CalendarActionDelete, EventID: bk.CalendarEventID()}
		prop, err := s.properties.FindByID(ctx, bk.PropertyID())
		if err != nil {
			res.Err = err
			return res
		}
		if _, err := s.calendar.DeleteEvent(ctx, prop.CalendarID(), res.EventID); err != nil {
			res.Err = err
			return res
		}
		res.Err = s.releaseCalendarEvent(ctx, bk, res.EventID)
		return res
	}
	return CalendarSyncResult{Action: CalendarActionNone}
}

// adoptCalendarEvent records eventID on the booking as it is now, under the property lock.
// If the booking left approved or already holds another event in the meantime, the new event
// is deleted instead.
func (s *BookingService) adoptCalendarEvent(ctx context.Context, bk *bookingDomain.Booking, calendarID, eventID string) error {
	var discard bool
	err := s.tx.WithinPropertyLock(ctx, bk.PropertyID(), func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, bk.ID())
		if err != nil {
			return err
		}
		switch {
		case current.CalendarEventID() == eventID:
			return nil
		case current.NeedsCalendarEvent():
			current.SetCalendarEvent(eventID, s.clock.Now())
			current.IncrementVersion()
			return s.repo.Update(txCtx, current)
		default:
			discard = true
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("failed to save calendar reference: %w", err)
	}
	if !discard {
		return nil
	}

	if _, err := s.calendar.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return fmt.Errorf("failed to delete unused calendar event %s: %w", eventID, err)
	}
	s.logger.Info("deleted calendar event of booking changed during sync",
		zap.String("booking_id", bk.ID().String()),
		zap.String("event_id", eventID),
	)
	return nil
}

// releaseCalendarEvent clears a deleted event from the booking under the property lock. A
// booking approved again meanwhile is left without an event and reported so a retry creates one.
func (s *BookingService) releaseCalendarEvent(ctx context.Context, bk *bookingDomain.Booking, eventID string) error {
	var reapproved bool
	err := s.tx.WithinPropertyLock(ctx, bk.PropertyID(), func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, bk.ID())
		if err != nil {
			return err
		}
		if current.CalendarEventID() != eventID {
			return nil
		}
		current.ClearCalendarEvent(s.clock.Now())
		current.IncrementVersion()
		reapproved = current.NeedsCalendarEvent()
		return s.repo.Update(txCtx, current)
	})
	if err != nil {
		return fmt.Errorf("failed to save calendar reference: %w", err)
	}
	if reapproved {
		return domain.NewConflictError("booking was approved again while its calendar event was deleted")
	}
	return nil
}

func (q BookingListQuery) toFilter() (bookingDomain.ListFilter, error) {
	filter := bookingDomain.ListFilter{PropertyID: q.PropertyID, Search: q.Search}
	if q.Status != "" {
		status, err := bookingDomain.ParseBookingStatus(q.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	return filter, nil
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data any) {
	cloudEvent, err := kafka.NewCloudEvent(serviceSource, eventType, key, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	guest := bk.Guest()
	return BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		PropertyID:      bk.PropertyID(),
		UserID:          bk.UserID(),
		FullName:        guest.FullName,
		Email:           guest.Email,
		Phone:           guest.Phone,
		Guests:          guest.Guests,
		Notes:           guest.Notes,
		CheckIn:         bk.Dates().CheckIn.Format(bookingDomain.DateLayout),
		CheckOut:        bk.Dates().CheckOut.Format(bookingDomain.DateLayout),
		Nights:          bk.Dates().Nights(),
		Status:          string(bk.Status()),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		CalendarEventID: bk.CalendarEventID(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
