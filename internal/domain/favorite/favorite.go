package favorite

import (
	"context"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
)

// Favorite marks a property saved by a user. A user holds at most one per property.
type Favorite struct {
	id         uuid.UUID
	userID     uuid.UUID
	propertyID uuid.UUID
	createdAt  time.Time
}

// NewFavorite creates a favorite.
func NewFavorite(userID, propertyID uuid.UUID) (*Favorite, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property is required")
	}
	return &Favorite{
		id:         uuid.New(),
		userID:     userID,
		propertyID: propertyID,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Favorite from persistence.
func Reconstruct(id, userID, propertyID uuid.UUID, createdAt time.Time) *Favorite {
	return &Favorite{id: id, userID: userID, propertyID: propertyID, createdAt: createdAt}
}

func (f *Favorite) ID() uuid.UUID         { return f.id }
func (f *Favorite) UserID() uuid.UUID     { return f.userID }
func (f *Favorite) PropertyID() uuid.UUID { return f.propertyID }
func (f *Favorite) CreatedAt() time.Time  { return f.createdAt }

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	// Find returns the user's favorite for a property, or nil when there is none.
	Find(ctx context.Context, userID, propertyID uuid.UUID) (*Favorite, error)
	Save(ctx context.Context, f *Favorite) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByUser returns the user's favorites newest first, optionally for one property.
	ListByUser(ctx context.Context, userID, propertyID uuid.UUID, page, limit int) ([]*Favorite, int64, error)
}
