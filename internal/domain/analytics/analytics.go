// Package analytics holds the per-property daily counters.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Field names one counter column.
type Field string

const (
	FieldViews     Field = "views"
	FieldInquiries Field = "inquiries"
	FieldBookings  Field = "bookings"
	FieldDownloads Field = "downloads"
)

// IsValid returns true if the field is a known counter.
func (f Field) IsValid() bool {
	switch f {
	case FieldViews, FieldInquiries, FieldBookings, FieldDownloads:
		return true
	}
	return false
}

// Column returns the database column for f. It only ever returns one of the fixed names above.
func (f Field) Column() (string, error) {
	if !f.IsValid() {
		return "", fmt.Errorf("unknown analytics field: %q", f)
	}
	return string(f), nil
}

// DailyCounter holds the counts of one property on one day.
type DailyCounter struct {
	PropertyID uuid.UUID
	Date       time.Time
	Views      int64
	Inquiries  int64
	Bookings   int64
	Downloads  int64
}

// Summary totals counters over a period.
type Summary struct {
	PropertyID uuid.UUID `json:"property_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Views      int64     `json:"views"`
	Inquiries  int64     `json:"inquiries"`
	Bookings   int64     `json:"bookings"`
	Downloads  int64     `json:"downloads"`
}

// Add folds one day into the summary.
func (s *Summary) Add(c DailyCounter) {
	s.Views += c.Views
	s.Inquiries += c.Inquiries
	s.Bookings += c.Bookings
	s.Downloads += c.Downloads
}

// CounterStore persists daily counters. Rows are created on first increment and never deleted.
type CounterStore interface {
	Increment(ctx context.Context, propertyID uuid.UUID, date time.Time, field Field) error
	FindRange(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]DailyCounter, error)
}
