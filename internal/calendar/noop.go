package calendar

import (
	"context"

	"github.com/eastmond-villas/service-booking/internal/application"
)

// Noop is used when calendar sync is disabled. Nothing is created, nothing fails.
type Noop struct{}

func (Noop) CreateEvent(context.Context, string, application.CalendarEvent) (string, error) {
	return "", nil
}

func (Noop) DeleteEvent(context.Context, string, string) (bool, error) { return false, nil }

func (Noop) CreatePropertyCalendar(context.Context, string) (string, error) { return "", nil }

var (
	_ application.CalendarService = (*GoogleCalendar)(nil)
	_ application.CalendarService = Noop{}
)
