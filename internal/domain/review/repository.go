package review

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows review listings. Zero values mean "any".
type ListFilter struct {
	PropertyID uuid.UUID
	UserID     uuid.UUID
	Rating     int
	Status     Status
	// Search matches the comment text.
	Search string
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Save(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	// List returns reviews newest first.
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Review, int64, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
