package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eastmond-villas/service-booking/internal/domain/analytics"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	favoriteDomain "github.com/eastmond-villas/service-booking/internal/domain/favorite"
	mediaDomain "github.com/eastmond-villas/service-booking/internal/domain/media"
	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	reviewDomain "github.com/eastmond-villas/service-booking/internal/domain/review"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/eastmond-villas/service-booking/pkg/kafka"
	"github.com/google/uuid"
)

// --- bookings ---

type fakeBookingRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*bookingDomain.Booking
	order []uuid.UUID

	updateFailures int
	updateErr      error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{items: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.BookingNumber(), b.PropertyID(), b.UserID(), b.Guest(), b.Dates(), b.Status(),
		b.TotalPriceCents(), b.Currency(), b.CalendarEventID(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.items {
		if b.BookingNumber() == number {
			return cloneBooking(b), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) list(filter bookingDomain.ListFilter, userID *uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, id := range r.order {
		b := r.items[id]
		if userID != nil && !b.IsRequestedBy(*userID) {
			continue
		}
		if filter.Status != "" && b.Status() != filter.Status {
			continue
		}
		if filter.PropertyID != uuid.Nil && b.PropertyID() != filter.PropertyID {
			continue
		}
		if filter.Search != "" && !b.Guest().Matches(filter.Search) {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	total := int64(len(out))
	if limit > 0 {
		start := (page - 1) * limit
		if start > len(out) {
			start = len(out)
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	out, total := r.list(filter, &userID, page, limit)
	return out, total, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	out, total := r.list(filter, nil, page, limit)
	return out, total, nil
}

func (r *fakeBookingRepo) FindApprovedByProperty(_ context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.items {
		if b.PropertyID() == propertyID && b.Status() == bookingDomain.StatusApproved {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindApprovedInPeriod(_ context.Context, propertyID uuid.UUID, start, end time.Time) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.items {
		d := b.Dates()
		if b.PropertyID() == propertyID && b.Status() == bookingDomain.StatusApproved &&
			!d.CheckIn.After(end) && !d.CheckOut.Before(start) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dates().CheckIn.Before(out[j].Dates().CheckIn) })
	return out, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.items {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID()] = cloneBooking(b)
	r.order = append(r.order, b.ID())
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateFailures > 0 {
		r.updateFailures--
		return r.updateErr
	}
	stored, ok := r.items[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.items[b.ID()] = cloneBooking(b)
	return nil
}

// failUpdates makes the next n Update calls return err.
func (r *fakeBookingRepo) failUpdates(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateFailures = n
	r.updateErr = err
}

func (r *fakeBookingRepo) status(id uuid.UUID) bookingDomain.BookingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Status()
}

// --- properties ---

type fakePropertyRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*propertyDomain.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{items: make(map[uuid.UUID]*propertyDomain.Property)}
}

func cloneProperty(p *propertyDomain.Property) *propertyDomain.Property {
	return propertyDomain.Reconstruct(
		p.ID(), p.Title(), p.Slug(), p.Description(), p.City(), p.Address(), p.Status(), p.ListingType(),
		p.NightlyRateCents(), p.Currency(), p.Capacity(), p.AssignedAgentID(), p.CreatedBy(), p.CalendarID(),
		p.Version(), p.CreatedAt(), p.UpdatedAt(),
	)
}

func (r *fakePropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Property", id.String())
	}
	return cloneProperty(p), nil
}

func (r *fakePropertyRepo) List(_ context.Context, status propertyDomain.Status, _, _ int) ([]*propertyDomain.Property, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*propertyDomain.Property
	for _, p := range r.items {
		if status == "" || p.Status() == status {
			out = append(out, cloneProperty(p))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePropertyRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakePropertyRepo) Save(_ context.Context, p *propertyDomain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID()] = cloneProperty(p)
	return nil
}

func (r *fakePropertyRepo) Update(_ context.Context, p *propertyDomain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[p.ID()]
	if !ok {
		return domain.NewNotFoundError("Property", p.ID().String())
	}
	if stored.Version() != p.Version()-1 {
		return domain.NewConflictError("property was modified by another transaction")
	}
	r.items[p.ID()] = cloneProperty(p)
	return nil
}

// --- media ---

type fakeMediaRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*mediaDomain.PropertyMedia
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{items: make(map[uuid.UUID]*mediaDomain.PropertyMedia)}
}

func (r *fakeMediaRepo) Save(_ context.Context, m *mediaDomain.PropertyMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[m.ID()] = m
	return nil
}

func (r *fakeMediaRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*mediaDomain.PropertyMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*mediaDomain.PropertyMedia
	for _, m := range r.items {
		if m.PropertyID() == propertyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMediaRepo) FindByID(_ context.Context, id uuid.UUID) (*mediaDomain.PropertyMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Media", id.String())
	}
	return m, nil
}

func (r *fakeMediaRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.NewNotFoundError("Media", id.String())
	}
	delete(r.items, id)
	return nil
}

// --- reviews ---

type fakeReviewRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*reviewDomain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{items: make(map[uuid.UUID]*reviewDomain.Review)}
}

func cloneReview(r *reviewDomain.Review) *reviewDomain.Review {
	return reviewDomain.Reconstruct(
		r.ID(), r.PropertyID(), r.UserID(), r.Rating(), r.Comment(), r.ImageURLs(), r.Status(), r.CreatedAt(), r.UpdatedAt(),
	)
}

func (r *fakeReviewRepo) Save(_ context.Context, rv *reviewDomain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rv.ID()] = cloneReview(rv)
	return nil
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Review", id.String())
	}
	return cloneReview(rv), nil
}

func (r *fakeReviewRepo) List(_ context.Context, f reviewDomain.ListFilter, _, _ int) ([]*reviewDomain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reviewDomain.Review
	for _, rv := range r.items {
		switch {
		case f.PropertyID != uuid.Nil && rv.PropertyID() != f.PropertyID,
			f.UserID != uuid.Nil && rv.UserID() != f.UserID,
			f.Rating != 0 && rv.Rating() != f.Rating,
			f.Status != "" && rv.Status() != f.Status,
			f.Search != "" && !strings.Contains(strings.ToLower(rv.Comment()), strings.ToLower(f.Search)):
			continue
		}
		out = append(out, cloneReview(rv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) Update(_ context.Context, rv *reviewDomain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[rv.ID()]; !ok {
		return domain.NewNotFoundError("Review", rv.ID().String())
	}
	r.items[rv.ID()] = cloneReview(rv)
	return nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.NewNotFoundError("Review", id.String())
	}
	delete(r.items, id)
	return nil
}

// --- favorites ---

type fakeFavoriteRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*favoriteDomain.Favorite
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{items: make(map[uuid.UUID]*favoriteDomain.Favorite)}
}

func (r *fakeFavoriteRepo) Find(_ context.Context, userID, propertyID uuid.UUID) (*favoriteDomain.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.items {
		if f.UserID() == userID && f.PropertyID() == propertyID {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFavoriteRepo) Save(_ context.Context, f *favoriteDomain.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID() == f.UserID() && existing.PropertyID() == f.PropertyID() {
			return domain.NewConflictError("property is already in favorites")
		}
	}
	r.items[f.ID()] = f
	return nil
}

func (r *fakeFavoriteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.NewNotFoundError("Favorite", id.String())
	}
	delete(r.items, id)
	return nil
}

func (r *fakeFavoriteRepo) ListByUser(_ context.Context, userID, propertyID uuid.UUID, _, _ int) ([]*favoriteDomain.Favorite, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*favoriteDomain.Favorite
	for _, f := range r.items {
		if f.UserID() == userID && (propertyID == uuid.Nil || f.PropertyID() == propertyID) {
			out = append(out, f)
		}
	}
	return out, int64(len(out)), nil
}

// --- counters ---

type counterKey struct {
	property uuid.UUID
	date     string
	field    analytics.Field
}

type fakeCounters struct {
	mu     sync.Mutex
	counts map[counterKey]int64
	err    error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{counts: make(map[counterKey]int64)}
}

func (c *fakeCounters) Increment(_ context.Context, propertyID uuid.UUID, date time.Time, field analytics.Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.counts[counterKey{propertyID, date.Format(bookingDomain.DateLayout), field}]++
	return nil
}

func (c *fakeCounters) FindRange(_ context.Context, propertyID uuid.UUID, from, to time.Time) ([]analytics.DailyCounter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	days := make(map[string]*analytics.DailyCounter)
	for k, v := range c.counts {
		if k.property != propertyID {
			continue
		}
		d, _ := time.Parse(bookingDomain.DateLayout, k.date)
		if d.Before(from) || d.After(to) {
			continue
		}
		dc, ok := days[k.date]
		if !ok {
			dc = &analytics.DailyCounter{PropertyID: propertyID, Date: d}
			days[k.date] = dc
		}
		switch k.field {
		case analytics.FieldViews:
			dc.Views += v
		case analytics.FieldInquiries:
			dc.Inquiries += v
		case analytics.FieldBookings:
			dc.Bookings += v
		case analytics.FieldDownloads:
			dc.Downloads += v
		}
	}
	out := make([]analytics.DailyCounter, 0, len(days))
	for _, dc := range days {
		out = append(out, *dc)
	}
	return out, nil
}

// total sums one field over every day of a property.
func (c *fakeCounters) total(propertyID uuid.UUID, field analytics.Field) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k, v := range c.counts {
		if k.property == propertyID && k.field == field {
			n += v
		}
	}
	return n
}

// --- tx ---

// fakeTxManager serializes work per property the way the row lock does.
type fakeTxManager struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (m *fakeTxManager) WithinPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	l, ok := m.locks[propertyID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[propertyID] = l
	}
	m.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

// --- calendar ---

type fakeCalendar struct {
	mu        sync.Mutex
	created   []CalendarEvent
	deleted   []string
	createErr error
	deleteErr error
	next      int
	// afterCreate runs once the event exists, outside the fake's lock.
	afterCreate func(eventID string)
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ string, event CalendarEvent) (string, error) {
	c.mu.Lock()
	if c.createErr != nil {
		c.mu.Unlock()
		return "", c.createErr
	}
	c.next++
	c.created = append(c.created, event)
	eventID := fmt.Sprintf("evt-%d", c.next)
	hook := c.afterCreate
	c.afterCreate = nil
	c.mu.Unlock()

	if hook != nil {
		hook(eventID)
	}
	return eventID, nil
}

func (c *fakeCalendar) deletedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, _, eventID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return false, c.deleteErr
	}
	c.deleted = append(c.deleted, eventID)
	return true, nil
}

func (c *fakeCalendar) CreatePropertyCalendar(_ context.Context, title string) (string, error) {
	return "cal-" + title, nil
}

func (c *fakeCalendar) createCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}

// --- publisher ---

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, evt kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: evt})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.event.Type
	}
	return out
}

// --- media store ---

type fakeMediaStore struct {
	keys []string
	err  error
}

func (s *fakeMediaStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://media.example.com/" + key, nil
}

// --- clock ---

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var errCalendarDown = errors.New("calendar unavailable")
