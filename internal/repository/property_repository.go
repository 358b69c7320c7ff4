package repository

import (
	"context"
	"errors"
	"time"

	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyModel is the GORM model for the properties table.
type PropertyModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title            string     `gorm:"type:varchar(200);not null"`
	Slug             string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description      string     `gorm:"type:text"`
	City             string     `gorm:"type:varchar(100)"`
	Address          string     `gorm:"type:text"`
	Status           string     `gorm:"type:varchar(20);not null;default:'draft';index"`
	ListingType      string     `gorm:"type:varchar(10);not null;default:'rent'"`
	NightlyRateCents int64      `gorm:"not null"`
	Currency         string     `gorm:"type:varchar(3);not null;default:'USD'"`
	MaxGuests        int        `gorm:"not null"`
	Bedrooms         int        `gorm:"not null;default:0"`
	Bathrooms        int        `gorm:"not null;default:0"`
	AssignedAgentID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy        uuid.UUID  `gorm:"type:uuid;not null"`
	CalendarID       string     `gorm:"type:varchar(255)"`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

func (PropertyModel) TableName() string { return "properties" }

// GormPropertyRepository implements PropertyRepository using GORM.
type GormPropertyRepository struct {
	db *gorm.DB
}

func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	var model PropertyModel
	if err := database.DB(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Property", id.String())
		}
		return nil, err
	}
	return toPropertyDomain(&model), nil
}

func (r *GormPropertyRepository) List(ctx context.Context, status propertyDomain.Status, page, limit int) ([]*propertyDomain.Property, int64, error) {
	query := database.DB(ctx, r.db).Model(&PropertyModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []PropertyModel
	if err := query.Order("created_at DESC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	props := make([]*propertyDomain.Property, len(models))
	for i := range models {
		props[i] = toPropertyDomain(&models[i])
	}
	return props, total, nil
}

func (r *GormPropertyRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := database.DB(ctx, r.db).Model(&PropertyModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormPropertyRepository) Save(ctx context.Context, p *propertyDomain.Property) error {
	return database.DB(ctx, r.db).Create(toPropertyModel(p)).Error
}

func (r *GormPropertyRepository) Update(ctx context.Context, p *propertyDomain.Property) error {
	model := toPropertyModel(p)
	previousVersion := p.Version() - 1

	result := database.DB(ctx, r.db).
		Model(&PropertyModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"title":              model.Title,
			"description":        model.Description,
			"city":               model.City,
			"address":            model.Address,
			"status":             model.Status,
			"nightly_rate_cents": model.NightlyRateCents,
			"max_guests":         model.MaxGuests,
			"bedrooms":           model.Bedrooms,
			"bathrooms":          model.Bathrooms,
			"assigned_agent_id":  model.AssignedAgentID,
			"calendar_id":        model.CalendarID,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("property was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toPropertyModel(p *propertyDomain.Property) *PropertyModel {
	c := p.Capacity()
	return &PropertyModel{
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
		Version:          p.Version(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}

func toPropertyDomain(m *PropertyModel) *propertyDomain.Property {
	return propertyDomain.Reconstruct(
		m.ID,
		m.Title, m.Slug, m.Description, m.City, m.Address,
		propertyDomain.Status(m.Status),
		propertyDomain.ListingType(m.ListingType),
		m.NightlyRateCents,
		m.Currency,
		propertyDomain.Capacity{MaxGuests: m.MaxGuests, Bedrooms: m.Bedrooms, Bathrooms: m.Bathrooms},
		m.AssignedAgentID,
		m.CreatedBy,
		m.CalendarID,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
