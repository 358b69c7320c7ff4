package booking

import (
	"time"

	"github.com/eastmond-villas/service-booking/pkg/domain"
)

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

// DateOf returns t's calendar date as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError("dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

// DateRange is a stay from CheckIn (inclusive) to CheckOut (exclusive).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange builds a range from two instants, keeping only their dates.
func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: DateOf(checkIn), CheckOut: DateOf(checkOut)}
}

// ValidateDateRange rejects a range that is empty, inverted or starts before today.
func ValidateDateRange(checkIn, checkOut, today time.Time) error {
	r := NewDateRange(checkIn, checkOut)
	if !r.CheckIn.Before(r.CheckOut) {
		return domain.New(domain.CodeInvalidRange, "check-out must be after check-in")
	}
	if r.CheckIn.Before(DateOf(today)) {
		return domain.New(domain.CodePastDate, "check-in cannot be in the past")
	}
	return nil
}

// Overlaps reports whether the two half-open ranges share at least one night.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Nights returns the number of nights in the stay.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Clip limits the range to the closed window [start, end].
func (r DateRange) Clip(start, end time.Time) (time.Time, time.Time) {
	from, to := r.CheckIn, r.CheckOut
	if from.Before(start) {
		from = start
	}
	if to.After(end) {
		to = end
	}
	return from, to
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, domain.New(domain.CodeInvalidPeriod, "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, domain.New(domain.CodeInvalidPeriod, "year is out of range")
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}
