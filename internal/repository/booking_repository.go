package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber   string     `gorm:"uniqueIndex;not null;size:20"`
	PropertyID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID          *uuid.UUID `gorm:"type:uuid;index"`
	FullName        string     `gorm:"not null;size:200"`
	Email           string     `gorm:"not null;size:254"`
	Phone           string     `gorm:"not null;size:50"`
	Guests          int        `gorm:"not null"`
	Notes           string     `gorm:"size:1000"`
	CheckIn         time.Time  `gorm:"type:date;not null"`
	CheckOut        time.Time  `gorm:"type:date;not null"`
	Status          string     `gorm:"not null;size:20;index"`
	TotalPriceCents int64      `gorm:"not null"`
	Currency        string     `gorm:"not null;size:3;default:'USD'"`
	CalendarEventID string     `gorm:"size:255"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
// Every query joins the transaction carried in the context, if any.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := database.DB(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := database.DB(ctx, r.db).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings made by a specific user with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.list(ctx, database.DB(ctx, r.db).Where("user_id = ?", userID), filter, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.list(ctx, database.DB(ctx, r.db), filter, page, limit)
}

func (r *GormBookingRepository) list(ctx context.Context, base *gorm.DB, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := applyBookingFilter(base.Model(&BookingModel{}), filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := query.
		Order("created_at DESC").
		Scopes(paginate(page, limit)).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindApprovedByProperty returns every approved booking of a property.
func (r *GormBookingRepository) FindApprovedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := database.DB(ctx, r.db).
		Where("property_id = ? AND status = ?", propertyID, string(bookingDomain.StatusApproved)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find approved bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindApprovedInPeriod returns approved bookings with check_in <= end and check_out >= start,
// ordered by check-in.
func (r *GormBookingRepository) FindApprovedInPeriod(ctx context.Context, propertyID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := database.DB(ctx, r.db).
		Where("property_id = ? AND status = ?", propertyID, string(bookingDomain.StatusApproved)).
		Where("check_in <= ? AND check_out >= ?", end, start).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings in period: %w", err)
	}
	return toDomainBookings(models)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := database.DB(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := database.DB(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row still holds version - 1.
	expectedVersion := bk.Version() - 1
	result := database.DB(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"full_name":         model.FullName,
			"email":             model.Email,
			"phone":             model.Phone,
			"guests":            model.Guests,
			"notes":             model.Notes,
			"check_in":          model.CheckIn,
			"check_out":         model.CheckOut,
			"total_price_cents": model.TotalPriceCents,
			"currency":          model.Currency,
			"calendar_event_id": model.CalendarEventID,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Query Helpers ---

func applyBookingFilter(q *gorm.DB, f bookingDomain.ListFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.PropertyID != uuid.Nil {
		q = q.Where("property_id = ?", f.PropertyID)
	}
	if f.Search != "" {
		if d, err := time.Parse(bookingDomain.DateLayout, f.Search); err == nil {
			q = q.Where("check_in = ? OR check_out = ?", d, d)
		} else {
			like := "%" + f.Search + "%"
			q = q.Where("full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
		}
	}
	return q
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 20
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	guest := bk.Guest()
	return &BookingModel{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		PropertyID:      bk.PropertyID(),
		UserID:          bk.UserID(),
		FullName:        guest.FullName,
		Email:           guest.Email,
		Phone:           guest.Phone,
		Guests:          guest.Guests,
		Notes:           guest.Notes,
		CheckIn:         bk.Dates().CheckIn,
		CheckOut:        bk.Dates().CheckOut,
		Status:          string(bk.Status()),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		CalendarEventID: bk.CalendarEventID(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.PropertyID,
		m.UserID,
		bookingDomain.GuestContact{
			FullName: m.FullName,
			Email:    m.Email,
			Phone:    m.Phone,
			Guests:   m.Guests,
			Notes:    m.Notes,
		},
		bookingDomain.NewDateRange(m.CheckIn, m.CheckOut),
		status,
		m.TotalPriceCents,
		m.Currency,
		m.CalendarEventID,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
