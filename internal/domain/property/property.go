package property

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
)

// Status represents the listing state of a property.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// ListingType says whether the property is offered for stays or for sale.
type ListingType string

const (
	ListingRent ListingType = "rent"
	ListingSale ListingType = "sale"
)

// IsValid returns true if the listing type is recognized.
func (l ListingType) IsValid() bool {
	return l == ListingRent || l == ListingSale
}

// Capacity groups the size attributes of a property.
type Capacity struct {
	MaxGuests int
	Bedrooms  int
	Bathrooms int
}

// Property is the aggregate root for a villa listing.
type Property struct {
	id               uuid.UUID
	title            string
	slug             string
	description      string
	city             string
	address          string
	status           Status
	listingType      ListingType
	nightlyRateCents int64
	currency         string
	capacity         Capacity
	assignedAgentID  *uuid.UUID
	createdBy        uuid.UUID
	calendarID       string
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug.
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// NewProperty creates a draft property with validated fields.
func NewProperty(
	createdBy uuid.UUID,
	title, description, city, address string,
	listingType ListingType,
	nightlyRateCents int64,
	currency string,
	capacity Capacity,
) (*Property, error) {
	if createdBy == uuid.Nil {
		return nil, domain.NewValidationError("creator is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if listingType == "" {
		listingType = ListingRent
	}
	if !listingType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid listing type: %s", listingType))
	}
	if nightlyRateCents < 0 {
		return nil, domain.NewValidationError("nightly rate cannot be negative")
	}
	if capacity.MaxGuests < 1 {
		return nil, domain.NewValidationError("max guests must be at least 1")
	}
	if currency == "" {
		currency = domain.CurrencyUSD
	}

	now := time.Now().UTC()
	id := uuid.New()
	return &Property{
		id:               id,
		title:            strings.TrimSpace(title),
		slug:             Slugify(title) + "-" + id.String()[:8],
		description:      description,
		city:             city,
		address:          address,
		status:           StatusDraft,
		listingType:      listingType,
		nightlyRateCents: nightlyRateCents,
		currency:         currency,
		capacity:         capacity,
		createdBy:        createdBy,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Property from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	title, slug, description, city, address string,
	status Status,
	listingType ListingType,
	nightlyRateCents int64,
	currency string,
	capacity Capacity,
	assignedAgentID *uuid.UUID,
	createdBy uuid.UUID,
	calendarID string,
	version int64,
	createdAt, updatedAt time.Time,
) *Property {
	return &Property{
		id:               id,
		title:            title,
		slug:             slug,
		description:      description,
		city:             city,
		address:          address,
		status:           status,
		listingType:      listingType,
		nightlyRateCents: nightlyRateCents,
		currency:         currency,
		capacity:         capacity,
		assignedAgentID:  assignedAgentID,
		createdBy:        createdBy,
		calendarID:       calendarID,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (p *Property) ID() uuid.UUID               { return p.id }
func (p *Property) Title() string               { return p.title }
func (p *Property) Slug() string                { return p.slug }
func (p *Property) Description() string         { return p.description }
func (p *Property) City() string                { return p.city }
func (p *Property) Address() string             { return p.address }
func (p *Property) Status() Status              { return p.status }
func (p *Property) ListingType() ListingType    { return p.listingType }
func (p *Property) NightlyRateCents() int64     { return p.nightlyRateCents }
func (p *Property) Currency() string            { return p.currency }
func (p *Property) Capacity() Capacity          { return p.capacity }
func (p *Property) AssignedAgentID() *uuid.UUID { return p.assignedAgentID }
func (p *Property) CreatedBy() uuid.UUID        { return p.createdBy }
func (p *Property) CalendarID() string          { return p.calendarID }
func (p *Property) Version() int64              { return p.version }
func (p *Property) CreatedAt() time.Time        { return p.createdAt }
func (p *Property) UpdatedAt() time.Time        { return p.updatedAt }

// --- Behavior ---

// Changes holds a partial update. Nil fields are left untouched.
type Changes struct {
	Title            *string
	Description      *string
	City             *string
	Address          *string
	NightlyRateCents *int64
	MaxGuests        *int
	Bedrooms         *int
	Bathrooms        *int
}

// Update applies partial updates to the listing.
func (p *Property) Update(c Changes) error {
	if c.Title != nil {
		if strings.TrimSpace(*c.Title) == "" {
			return domain.NewValidationError("title cannot be empty")
		}
		p.title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		p.description = *c.Description
	}
	if c.City != nil {
		p.city = *c.City
	}
	if c.Address != nil {
		p.address = *c.Address
	}
	if c.NightlyRateCents != nil {
		if *c.NightlyRateCents < 0 {
			return domain.NewValidationError("nightly rate cannot be negative")
		}
		p.nightlyRateCents = *c.NightlyRateCents
	}
	if c.MaxGuests != nil {
		if *c.MaxGuests < 1 {
			return domain.NewValidationError("max guests must be at least 1")
		}
		p.capacity.MaxGuests = *c.MaxGuests
	}
	if c.Bedrooms != nil {
		p.capacity.Bedrooms = *c.Bedrooms
	}
	if c.Bathrooms != nil {
		p.capacity.Bathrooms = *c.Bathrooms
	}
	p.updatedAt = time.Now().UTC()
	return nil
}

// Publish makes the property visible and bookable.
func (p *Property) Publish() error {
	if p.status == StatusArchived {
		return domain.NewInvalidStateError(string(p.status), string(StatusPublished))
	}
	p.status = StatusPublished
	p.updatedAt = time.Now().UTC()
	return nil
}

// Archive withdraws the listing. Existing bookings are kept.
func (p *Property) Archive() {
	p.status = StatusArchived
	p.updatedAt = time.Now().UTC()
}

// AssignAgent makes agentID responsible for the listing.
func (p *Property) AssignAgent(agentID uuid.UUID) error {
	if agentID == uuid.Nil {
		return domain.NewValidationError("agent ID is required")
	}
	p.assignedAgentID = &agentID
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetCalendarID links the property to its external calendar.
func (p *Property) SetCalendarID(calendarID string) {
	p.calendarID = calendarID
	p.updatedAt = time.Now().UTC()
}

// IsBookable returns true if guests may request stays.
func (p *Property) IsBookable() bool {
	return p.status == StatusPublished && p.listingType == ListingRent
}

// CanBeManagedBy reports whether userID created the listing or is its assigned agent.
func (p *Property) CanBeManagedBy(userID uuid.UUID) bool {
	if p.createdBy == userID {
		return true
	}
	return p.assignedAgentID != nil && *p.assignedAgentID == userID
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Property) IncrementVersion() {
	p.version++
}
