package repository

import (
	"context"
	"errors"
	"time"

	favoriteDomain "github.com/eastmond-villas/service-booking/internal/domain/favorite"
	"github.com/eastmond-villas/service-booking/pkg/database"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FavoriteModel is the GORM model for the favorites table.
type FavoriteModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_property"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_property"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (FavoriteModel) TableName() string { return "favorites" }

// GormFavoriteRepository implements FavoriteRepository using GORM.
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository.
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

func (r *GormFavoriteRepository) Find(ctx context.Context, userID, propertyID uuid.UUID) (*favoriteDomain.Favorite, error) {
	var model FavoriteModel
	err := database.DB(ctx, r.db).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toFavoriteDomain(&model), nil
}

// Save inserts a favorite. A second favorite for the same user and property is a conflict.
func (r *GormFavoriteRepository) Save(ctx context.Context, f *favoriteDomain.Favorite) error {
	model := FavoriteModel{
		ID:         f.ID(),
		UserID:     f.UserID(),
		PropertyID: f.PropertyID(),
		CreatedAt:  f.CreatedAt(),
	}
	if err := database.DB(ctx, r.db).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("property is already in favorites")
		}
		return err
	}
	return nil
}

func (r *GormFavoriteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := database.DB(ctx, r.db).Where("id = ?", id).Delete(&FavoriteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Favorite", id.String())
	}
	return nil
}

func (r *GormFavoriteRepository) ListByUser(ctx context.Context, userID, propertyID uuid.UUID, page, limit int) ([]*favoriteDomain.Favorite, int64, error) {
	query := database.DB(ctx, r.db).Model(&FavoriteModel{}).Where("user_id = ?", userID)
	if propertyID != uuid.Nil {
		query = query.Where("property_id = ?", propertyID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []FavoriteModel
	if err := query.Order("created_at DESC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	items := make([]*favoriteDomain.Favorite, len(models))
	for i := range models {
		items[i] = toFavoriteDomain(&models[i])
	}
	return items, total, nil
}

func toFavoriteDomain(m *FavoriteModel) *favoriteDomain.Favorite {
	return favoriteDomain.Reconstruct(m.ID, m.UserID, m.PropertyID, m.CreatedAt)
}
