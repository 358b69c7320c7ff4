package property

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines persistence operations for property listings.
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	// List returns properties, optionally restricted to one status, with pagination.
	List(ctx context.Context, status Status, page, limit int) ([]*Property, int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, p *Property) error
	Update(ctx context.Context, p *Property) error
}
