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

// CreatePropertyRequest is the request DTO for creating a listing.
type CreatePropertyRequest struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description"`
	City             string `json:"city"`
	Address          string `json:"address"`
	ListingType      string `json:"listing_type"`
	NightlyRateCents int64  `json:"nightly_rate_cents" binding:"min=0"`
	Currency         string `json:"currency"`
	MaxGuests        int    `json:"max_guests" binding:"required,min=1"`
	Bedrooms         int    `json:"bedrooms" binding:"min=0"`
	Bathrooms        int    `json:"bathrooms" binding:"min=0"`
}

// UpdatePropertyRequest is the request DTO for a partial listing update.
type UpdatePropertyRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	City             *string `json:"city"`
	Address          *string `json:"address"`
	NightlyRateCents *int64  `json:"nightly_rate_cents"`
	MaxGuests        *int    `json:"max_guests"`
	Bedrooms         *int    `json:"bedrooms"`
	Bathrooms        *int    `json:"bathrooms"`
}

// AssignAgentRequest names the agent responsible for a listing.
type AssignAgentRequest struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
}

// PropertyDTO is the API response representation of a listing.
type PropertyDTO struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	City             string     `json:"city"`
	Address          string     `json:"address"`
	Status           string     `json:"status"`
	ListingType      string     `json:"listing_type"`
	NightlyRateCents int64      `json:"nightly_rate_cents"`
	Currency         string     `json:"currency"`
	MaxGuests        int        `json:"max_guests"`
	Bedrooms         int        `json:"bedrooms"`
	Bathrooms        int        `json:"bathrooms"`
	AssignedAgentID  *uuid.UUID `json:"assigned_agent_id,omitempty"`
	CreatedBy        uuid.UUID  `json:"created_by"`
	CalendarID       string     `json:"calendar_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PropertyService implements listing management and the per-property counters.
type PropertyService struct {
	repo      propertyDomain.PropertyRepository
	counters  analytics.CounterStore
	calendar  CalendarService
	publisher EventPublisher
	clock     Clock
	logger    *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(
	repo propertyDomain.PropertyRepository,
	counters analytics.CounterStore,
	calendar CalendarService,
	publisher EventPublisher,
	clock Clock,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{
		repo:      repo,
		counters:  counters,
		calendar:  calendar,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// CreateProperty creates a draft listing and, when calendar sync is on, its own calendar.
func (s *PropertyService) CreateProperty(ctx context.Context, actor Actor, req CreatePropertyRequest) (*PropertyDTO, error) {
	if !actor.Can(auth.CapManageProperties) {
		return nil, domain.NewForbiddenError("not allowed to create properties")
	}

	p, err := propertyDomain.NewProperty(
		actor.UserID,
		req.Title, req.Description, req.City, req.Address,
		propertyDomain.ListingType(req.ListingType),
		req.NightlyRateCents,
		req.Currency,
		propertyDomain.Capacity{MaxGuests: req.MaxGuests, Bedrooms: req.Bedrooms, Bathrooms: req.Bathrooms},
	)
	if err != nil {
		return nil, err
	}

	calendarID, err := s.calendar.CreatePropertyCalendar(ctx, p.Title())
	if err != nil {
		s.logger.Warn("failed to create property calendar",
			zap.String("property_id", p.ID().String()),
			zap.Error(err),
		)
	} else if calendarID != "" {
		p.SetCalendarID(calendarID)
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to create property", zap.Error(err))
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.logger.Info("property created",
		zap.String("property_id", p.ID().String()),
		zap.String("created_by", actor.UserID.String()),
	)
	s.publishPropertyEvent(ctx, contracts.PropertyCreated, p)

	return toPropertyDTO(p), nil
}

// GetProperty returns a listing and counts the view. Unpublished listings are only visible to
// property managers.
func (s *PropertyService) GetProperty(ctx context.Context, actor Actor, id uuid.UUID) (*PropertyDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status() != propertyDomain.StatusPublished && !actor.Can(auth.CapManageProperties) {
		return nil, domain.NewNotFoundError("Property", id.String())
	}

	s.recordCounter(ctx, p.ID(), analytics.FieldViews)
	return toPropertyDTO(p), nil
}

// ListProperties pages through listings. Callers without property management only see published ones.
func (s *PropertyService) ListProperties(ctx context.Context, actor Actor, status string, page, limit int) (*domain.PaginatedResult[PropertyDTO], error) {
	st := propertyDomain.Status(status)
	if !actor.Can(auth.CapManageProperties) {
		st = propertyDomain.StatusPublished
	} else if st != "" && !st.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid property status: %s", status))
	}

	props, total, err := s.repo.List(ctx, st, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = *toPropertyDTO(p)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateProperty applies a partial update.
func (s *PropertyService) UpdateProperty(ctx context.Context, actor Actor, id uuid.UUID, req UpdatePropertyRequest) (*PropertyDTO, error) {
	return s.mutate(ctx, actor, id, func(p *propertyDomain.Property) error {
		return p.Update(propertyDomain.Changes{
			Title:            req.Title,
			Description:      req.Description,
			City:             req.City,
			Address:          req.Address,
			NightlyRateCents: req.NightlyRateCents,
			MaxGuests:        req.MaxGuests,
			Bedrooms:         req.Bedrooms,
			Bathrooms:        req.Bathrooms,
		})
	})
}

// PublishProperty opens a listing for bookings.
func (s *PropertyService) PublishProperty(ctx context.Context, actor Actor, id uuid.UUID) (*PropertyDTO, error) {
	dto, err := s.mutate(ctx, actor, id, func(p *propertyDomain.Property) error { return p.Publish() })
	if err == nil {
		s.publishStatusChanged(ctx, dto)
	}
	return dto, err
}

// ArchiveProperty withdraws a listing.
func (s *PropertyService) ArchiveProperty(ctx context.Context, actor Actor, id uuid.UUID) (*PropertyDTO, error) {
	dto, err := s.mutate(ctx, actor, id, func(p *propertyDomain.Property) error {
		p.Archive()
		return nil
	})
	if err == nil {
		s.publishStatusChanged(ctx, dto)
	}
	return dto, err
}

// AssignAgent hands a listing to an agent. Only actors that may assign agents can do this.
func (s *PropertyService) AssignAgent(ctx context.Context, actor Actor, id, agentID uuid.UUID) (*PropertyDTO, error) {
	if !actor.Can(auth.CapAssignAgents) {
		return nil, domain.NewForbiddenError("not allowed to assign agents")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AssignAgent(agentID); err != nil {
		return nil, err
	}
	p.IncrementVersion()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("agent assigned",
		zap.String("property_id", p.ID().String()),
		zap.String("agent_id", agentID.String()),
	)
	s.publishPropertyEvent(ctx, contracts.PropertyAgentAssigned, p)
	return toPropertyDTO(p), nil
}

// RecordDownload counts a brochure download and returns the listing.
func (s *PropertyService) RecordDownload(ctx context.Context, id uuid.UUID) (*PropertyDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordCounter(ctx, p.ID(), analytics.FieldDownloads)
	return toPropertyDTO(p), nil
}

// GetAnalytics sums the daily counters of a property between from and to, inclusive.
// Zero dates default to the last 30 days.
func (s *PropertyService) GetAnalytics(ctx context.Context, actor Actor, id uuid.UUID, from, to time.Time) (*analytics.Summary, error) {
	if !actor.Can(auth.CapViewAnalytics) {
		return nil, domain.NewForbiddenError("not allowed to view analytics")
	}
	if to.IsZero() {
		to = bookingDomain.DateOf(s.clock.Now())
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -29)
	}
	if from.After(to) {
		return nil, domain.New(domain.CodeInvalidPeriod, "from must not be after to")
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError("Property", id.String())
	}

	days, err := s.counters.FindRange(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}

	summary := &analytics.Summary{
		PropertyID: id,
		From:       from.Format(bookingDomain.DateLayout),
		To:         to.Format(bookingDomain.DateLayout),
	}
	for _, d := range days {
		summary.Add(d)
	}
	return summary, nil
}

// --- Helpers ---

// mutate loads a listing, checks the actor may manage it, applies fn and saves.
func (s *PropertyService) mutate(ctx context.Context, actor Actor, id uuid.UUID, fn func(*propertyDomain.Property) error) (*PropertyDTO, error) {
	if !actor.Can(auth.CapManageProperties) {
		return nil, domain.NewForbiddenError("not allowed to manage properties")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Can(auth.CapAssignAgents) && !p.CanBeManagedBy(actor.UserID) {
		return nil, domain.NewForbiddenError("property is not assigned to this user")
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.IncrementVersion()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toPropertyDTO(p), nil
}

func (s *PropertyService) recordCounter(ctx context.Context, propertyID uuid.UUID, field analytics.Field) {
	if err := s.counters.Increment(ctx, propertyID, s.clock.Now(), field); err != nil {
		s.logger.Warn("failed to record analytics",
			zap.String("property_id", propertyID.String()),
			zap.String("field", string(field)),
			zap.Error(err),
		)
	}
}

func (s *PropertyService) publishStatusChanged(ctx context.Context, p *PropertyDTO) {
	s.publish(ctx, contracts.PropertyStatusChanged, p.ID.String(), contracts.PropertyEvent{
		PropertyID: p.ID,
		Status:     p.Status,
		AgentID:    p.AssignedAgentID,
		OccurredAt: s.clock.Now(),
	})
}

func (s *PropertyService) publishPropertyEvent(ctx context.Context, eventType string, p *propertyDomain.Property) {
	s.publish(ctx, eventType, p.ID().String(), contracts.PropertyEvent{
		PropertyID: p.ID(),
		Status:     string(p.Status()),
		AgentID:    p.AssignedAgentID(),
		OccurredAt: s.clock.Now(),
	})
}

func (s *PropertyService) publish(ctx context.Context, eventType, key string, data any) {
	evt, err := kafka.NewCloudEvent(serviceSource, eventType, key, data)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.PublishEvent(ctx, contracts.TopicPropertyEvents, evt); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", contracts.TopicPropertyEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toPropertyDTO(p *propertyDomain.Property) *PropertyDTO {
	c := p.Capacity()
	return &PropertyDTO{
		ID:               p.ID(),
		Title:            p.Title(),
		Slug:             p.Slug(),
		Description:      p.Description(),
		City:             p.City(),
		Address:          p.Address(),
		Status:           string(p.Status()),
		ListingType:      string(p.ListingType()),
		NightlyRateCents: p.NightlyRateCents(),
		Currency:         p.Currency(),
		MaxGuests:        c.MaxGuests,
		Bedrooms:         c.Bedrooms,
		Bathrooms:        c.Bathrooms,
		AssignedAgentID:  p.AssignedAgentID(),
		CreatedBy:        p.CreatedBy(),
		CalendarID:       p.CalendarID(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}
