package repository

import (
	"context"
	"errors"
	"time"

	mediaDomain "github.com/eastmond-villas/service-booking/internal/domain/media"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaModel is the GORM model for the property_media table.
type MediaModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index"`
	MediaType  string    `gorm:"type:varchar(10);not null"`
	Category   string    `gorm:"type:varchar(20);not null;default:'other'"`
	URL        string    `gorm:"type:text;not null"`
	Caption    string    `gorm:"type:text"`
	IsPrimary  bool      `gorm:"not null;default:false"`
	SortOrder  int       `gorm:"not null;default:0"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (MediaModel) TableName() string { return "property_media" }

// GormMediaRepository implements MediaRepository using GORM.
type GormMediaRepository struct {
	db *gorm.DB
}

// NewGormMediaRepository creates a new GormMediaRepository.
func NewGormMediaRepository(db *gorm.DB) *GormMediaRepository {
	return &GormMediaRepository{db: db}
}

// Save persists new property media.
func (r *GormMediaRepository) Save(ctx context.Context, m *mediaDomain.PropertyMedia) error {
	model := toMediaModel(m)
	return database.DB(ctx, r.db).Create(&model).Error
}

// FindByPropertyID returns the media of a property, primary first.
func (r *GormMediaRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*mediaDomain.PropertyMedia, error) {
	var models []MediaModel
	if err := database.DB(ctx, r.db).
		Where("property_id = ?", propertyID).
		Order("is_primary DESC, sort_order ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	items := make([]*mediaDomain.PropertyMedia, len(models))
	for i := range models {
		items[i] = toMediaDomain(&models[i])
	}
	return items, nil
}

// FindByID returns a single media item by ID.
func (r *GormMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*mediaDomain.PropertyMedia, error) {
	var model MediaModel
	if err := database.DB(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Media", id.String())
		}
		return nil, err
	}
	return toMediaDomain(&model), nil
}

// Delete removes a media item.
func (r *GormMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := database.DB(ctx, r.db).Where("id = ?", id).Delete(&MediaModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Media", id.String())
	}
	return nil
}

func toMediaModel(m *mediaDomain.PropertyMedia) MediaModel {
	return MediaModel{
		ID:         m.ID(),
		PropertyID: m.PropertyID(),
		MediaType:  string(m.MediaType()),
		Category:   string(m.Category()),
		URL:        m.URL(),
		Caption:    m.Caption(),
		IsPrimary:  m.IsPrimary(),
		SortOrder:  m.Order(),
		UploadedBy: m.UploadedBy(),
		CreatedAt:  m.CreatedAt(),
	}
}

func toMediaDomain(m *MediaModel) *mediaDomain.PropertyMedia {
	return mediaDomain.Reconstruct(
		m.ID,
		m.PropertyID,
		mediaDomain.Type(m.MediaType),
		mediaDomain.Category(m.Category),
		m.URL,
		m.Caption,
		m.IsPrimary,
		m.SortOrder,
		m.UploadedBy,
		m.CreatedAt,
	)
}
