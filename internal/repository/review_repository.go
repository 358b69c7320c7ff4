package repository

import (
	"context"
	"errors"
	"time"

	reviewDomain "github.com/eastmond-villas/service-booking/internal/domain/review"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewModel is the GORM model for the reviews table.
type ReviewModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Rating     int       `gorm:"not null"`
	Comment    string    `gorm:"type:text;not null"`
	ImageURLs  []string  `gorm:"column:image_urls;type:jsonb;serializer:json"`
	Status     string    `gorm:"type:varchar(10);not null;default:'pending';index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (ReviewModel) TableName() string { return "reviews" }

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) Save(ctx context.Context, rv *reviewDomain.Review) error {
	model := toReviewModel(rv)
	return database.DB(ctx, r.db).Create(&model).Error
}

func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := database.DB(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", id.String())
		}
		return nil, err
	}
	return toReviewDomain(&model), nil
}

func (r *GormReviewRepository) List(ctx context.Context, filter reviewDomain.ListFilter, page, limit int) ([]*reviewDomain.Review, int64, error) {
	query := database.DB(ctx, r.db).Model(&ReviewModel{})
	if filter.PropertyID != uuid.Nil {
		query = query.Where("property_id = ?", filter.PropertyID)
	}
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Rating != 0 {
		query = query.Where("rating = ?", filter.Rating)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		query = query.Where("comment ILIKE ?", "%"+filter.Search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []ReviewModel
	if err := query.Order("created_at DESC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	items := make([]*reviewDomain.Review, len(models))
	for i := range models {
		items[i] = toReviewDomain(&models[i])
	}
	return items, total, nil
}

// Update writes the moderation status.
func (r *GormReviewRepository) Update(ctx context.Context, rv *reviewDomain.Review) error {
	result := database.DB(ctx, r.db).
		Model(&ReviewModel{}).
		Where("id = ?", rv.ID()).
		Updates(map[string]interface{}{
			"status":     string(rv.Status()),
			"updated_at": rv.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Review", rv.ID().String())
	}
	return nil
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := database.DB(ctx, r.db).Where("id = ?", id).Delete(&ReviewModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Review", id.String())
	}
	return nil
}

func toReviewModel(rv *reviewDomain.Review) ReviewModel {
	return ReviewModel{
		ID:         rv.ID(),
		PropertyID: rv.PropertyID(),
		UserID:     rv.UserID(),
		Rating:     rv.Rating(),
		Comment:    rv.Comment(),
		ImageURLs:  rv.ImageURLs(),
		Status:     string(rv.Status()),
		CreatedAt:  rv.CreatedAt(),
		UpdatedAt:  rv.UpdatedAt(),
	}
}

func toReviewDomain(m *ReviewModel) *reviewDomain.Review {
	return reviewDomain.Reconstruct(
		m.ID,
		m.PropertyID,
		m.UserID,
		m.Rating,
		m.Comment,
		m.ImageURLs,
		reviewDomain.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
