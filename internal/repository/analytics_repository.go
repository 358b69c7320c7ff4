package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/eastmond-villas/service-booking/internal/domain/analytics"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyAnalyticsModel is the GORM model for the daily_analytics table.
type DailyAnalyticsModel struct {
	PropertyID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date       time.Time `gorm:"type:date;primaryKey"`
	Views      int64     `gorm:"not null;default:0"`
	Inquiries  int64     `gorm:"not null;default:0"`
	Bookings   int64     `gorm:"not null;default:0"`
	Downloads  int64     `gorm:"not null;default:0"`
}

func (DailyAnalyticsModel) TableName() string { return "daily_analytics" }

// GormCounterStore implements analytics.CounterStore with an upsert per increment.
type GormCounterStore struct {
	db *gorm.DB
}

func NewGormCounterStore(db *gorm.DB) *GormCounterStore {
	return &GormCounterStore{db: db}
}

// Increment adds one to field for the property on date's calendar day. Concurrent increments
// on the same row are serialized by the upsert.
func (s *GormCounterStore) Increment(ctx context.Context, propertyID uuid.UUID, date time.Time, field analytics.Field) error {
	col, err := field.Column()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO daily_analytics (property_id, date, %[1]s) VALUES (?, ?, 1)
		ON CONFLICT (property_id, date) DO UPDATE SET %[1]s = daily_analytics.%[1]s + 1`,
		col,
	)
	if err := database.DB(ctx, s.db).Exec(query, propertyID, bookingDomain.DateOf(date)).Error; err != nil {
		return fmt.Errorf("failed to increment %s: %w", col, err)
	}
	return nil
}

// FindRange returns the stored days of a property between from and to, inclusive.
// Days without activity have no row.
func (s *GormCounterStore) FindRange(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]analytics.DailyCounter, error) {
	var models []DailyAnalyticsModel
	if err := database.DB(ctx, s.db).
		Where("property_id = ? AND date BETWEEN ? AND ?", propertyID, bookingDomain.DateOf(from), bookingDomain.DateOf(to)).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load daily analytics: %w", err)
	}

	out := make([]analytics.DailyCounter, len(models))
	for i, m := range models {
		out[i] = analytics.DailyCounter{
			PropertyID: m.PropertyID,
			Date:       bookingDomain.DateOf(m.Date),
			Views:      m.Views,
			Inquiries:  m.Inquiries,
			Bookings:   m.Bookings,
			Downloads:  m.Downloads,
		}
	}
	return out, nil
}
