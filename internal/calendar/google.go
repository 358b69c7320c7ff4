// Package calendar publishes approved stays to Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eastmond-villas/service-booking/internal/application"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleCalendar implements application.CalendarService against the Google Calendar API.
type GoogleCalendar struct {
	svc      *gcal.Service
	timeZone string
	logger   *zap.Logger
}

// NewGoogleCalendar authenticates with a service account credentials file.
func NewGoogleCalendar(ctx context.Context, credentialsFile, timeZone string, logger *zap.Logger) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return NewGoogleCalendarWithService(svc, timeZone, logger), nil
}

// NewGoogleCalendarWithService wraps an already configured client.
func NewGoogleCalendarWithService(svc *gcal.Service, timeZone string, logger *zap.Logger) *GoogleCalendar {
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &GoogleCalendar{svc: svc, timeZone: timeZone, logger: logger}
}

// CreateEvent adds an all-day event covering the stay. The end date is exclusive in Google
// Calendar, so the check-out day is included by ending one day later. A property without a
// calendar yields an empty id and no error.
func (g *GoogleCalendar) CreateEvent(ctx context.Context, calendarID string, e application.CalendarEvent) (string, error) {
	if calendarID == "" {
		g.logger.Debug("property has no calendar, skipping event", zap.String("booking_number", e.BookingNumber))
		return "", nil
	}

	event := &gcal.Event{
		Summary:     fmt.Sprintf("Booked: %s by %s", e.PropertyTitle, e.GuestName),
		Description: eventDescription(e),
		Start: &gcal.EventDateTime{
			Date:     e.CheckIn.Format(bookingDomain.DateLayout),
			TimeZone: g.timeZone,
		},
		End: &gcal.EventDateTime{
			Date:     e.CheckOut.AddDate(0, 0, 1).Format(bookingDomain.DateLayout),
			TimeZone: g.timeZone,
		},
	}

	created, err := g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	g.logger.Info("calendar event created",
		zap.String("calendar_id", calendarID),
		zap.String("event_id", created.Id),
		zap.String("booking_number", e.BookingNumber),
	)
	return created.Id, nil
}

// DeleteEvent removes an event. An event that is already gone reports false without error.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) (bool, error) {
	if calendarID == "" || eventID == "" {
		return false, nil
	}

	err := g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return true, nil
}

// CreatePropertyCalendar creates a calendar for a listing and makes it publicly readable.
// A failure to share is logged; the calendar is still returned.
func (g *GoogleCalendar) CreatePropertyCalendar(ctx context.Context, title string) (string, error) {
	cal, err := g.svc.Calendars.Insert(&gcal.Calendar{
		Summary:  title,
		TimeZone: g.timeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar: %w", err)
	}

	rule := &gcal.AclRule{
		Role:  "reader",
		Scope: &gcal.AclRuleScope{Type: "default"},
	}
	if _, err := g.svc.Acl.Insert(cal.Id, rule).Context(ctx).Do(); err != nil {
		g.logger.Warn("failed to share property calendar",
			zap.String("calendar_id", cal.Id),
			zap.Error(err),
		)
	}
	return cal.Id, nil
}

func eventDescription(e application.CalendarEvent) string {
	return fmt.Sprintf("Booking %s\nGuest: %s\nEmail: %s\nPhone: %s",
		e.BookingNumber, e.GuestName, e.GuestEmail, e.GuestPhone)
}
