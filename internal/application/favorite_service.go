package application

import (
	"context"
	"time"

	favoriteDomain "github.com/eastmond-villas/service-booking/internal/domain/favorite"
	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToggleFavoriteRequest names the property to add or remove.
type ToggleFavoriteRequest struct {
	PropertyID uuid.UUID `json:"property"`
}

// FavoriteDTO is the API response representation of a favorite.
type FavoriteDTO struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FavoriteService manages the properties a user has saved.
type FavoriteService struct {
	repo       favoriteDomain.FavoriteRepository
	properties propertyDomain.PropertyRepository
	logger     *zap.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(repo favoriteDomain.FavoriteRepository, properties propertyDomain.PropertyRepository, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, properties: properties, logger: logger}
}

// ToggleFavorite removes the property from the actor's favorites if present, otherwise adds it.
// It reports whether the property is now a favorite; the DTO is nil after a removal.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, actor Actor, propertyID uuid.UUID) (bool, *FavoriteDTO, error) {
	if propertyID == uuid.Nil {
		return false, nil, domain.NewValidationError("property is required")
	}

	existing, err := s.repo.Find(ctx, actor.UserID, propertyID)
	if err != nil {
		return false, nil, err
	}
	if existing != nil {
		if err := s.repo.Delete(ctx, existing.ID()); err != nil {
			return false, nil, err
		}
		s.logger.Info("favorite removed",
			zap.String("user_id", actor.UserID.String()),
			zap.String("property_id", propertyID.String()),
		)
		return false, nil, nil
	}

	ok, err := s.properties.Exists(ctx, propertyID)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, domain.NewNotFoundError("Property", propertyID.String())
	}

	f, err := favoriteDomain.NewFavorite(actor.UserID, propertyID)
	if err != nil {
		return false, nil, err
	}
	if err := s.repo.Save(ctx, f); err != nil {
		return false, nil, err
	}

	s.logger.Info("favorite added",
		zap.String("user_id", actor.UserID.String()),
		zap.String("property_id", propertyID.String()),
	)
	return true, toFavoriteDTO(f), nil
}

// ListFavorites returns the actor's own favorites. A zero propertyID lists all of them.
func (s *FavoriteService) ListFavorites(ctx context.Context, actor Actor, propertyID uuid.UUID, page, limit int) ([]*FavoriteDTO, int64, error) {
	items, total, err := s.repo.ListByUser(ctx, actor.UserID, propertyID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*FavoriteDTO, len(items))
	for i, f := range items {
		dtos[i] = toFavoriteDTO(f)
	}
	return dtos, total, nil
}

func toFavoriteDTO(f *favoriteDomain.Favorite) *FavoriteDTO {
	return &FavoriteDTO{ID: f.ID(), PropertyID: f.PropertyID(), CreatedAt: f.CreatedAt()}
}
