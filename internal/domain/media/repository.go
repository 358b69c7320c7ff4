package media

import (
	"context"

	"github.com/google/uuid"
)

// MediaRepository defines persistence operations for property media.
type MediaRepository interface {
	Save(ctx context.Context, m *PropertyMedia) error
	// FindByPropertyID returns media ordered by primary flag, then order.
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*PropertyMedia, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PropertyMedia, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
