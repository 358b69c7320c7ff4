package application

import (
	"context"
	"time"

	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	reviewDomain "github.com/eastmond-villas/service-booking/internal/domain/review"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateReviewRequest is the payload for posting a review.
type CreateReviewRequest struct {
	PropertyID uuid.UUID `json:"property" binding:"required"`
	Rating     int       `json:"rating" binding:"required,min=1,max=5"`
	Comment    string    `json:"comment" binding:"required"`
	Images     []string  `json:"images" binding:"omitempty,dive,url"`
}

// ModerateReviewRequest sets a review's moderation status.
type ModerateReviewRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReviewQuery filters review listings. Status is ignored for callers who cannot moderate.
type ReviewQuery struct {
	PropertyID uuid.UUID
	UserID     uuid.UUID
	Rating     int
	Status     string
	Search     string
}

// ReviewDTO is the API response representation of a review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Images     []string  `json:"images"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewService handles guest reviews and their moderation.
type ReviewService struct {
	repo       reviewDomain.ReviewRepository
	properties propertyDomain.PropertyRepository
	clock      Clock
	logger     *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo reviewDomain.ReviewRepository, properties propertyDomain.PropertyRepository, clock Clock, logger *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, properties: properties, clock: clock, logger: logger}
}

// CreateReview posts a review that waits for moderation.
func (s *ReviewService) CreateReview(ctx context.Context, actor Actor, req CreateReviewRequest) (*ReviewDTO, error) {
	if err := s.requireProperty(ctx, req.PropertyID); err != nil {
		return nil, err
	}

	r, err := reviewDomain.NewReview(req.PropertyID, actor.UserID, req.Rating, req.Comment, req.Images)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.String("review_id", r.ID().String()),
		zap.String("property_id", r.PropertyID().String()),
		zap.Int("rating", r.Rating()),
	)
	return toReviewDTO(r), nil
}

// ListReviews returns reviews newest first. Only moderators see reviews that are not approved.
func (s *ReviewService) ListReviews(ctx context.Context, actor Actor, q ReviewQuery, page, limit int) ([]*ReviewDTO, int64, error) {
	filter := reviewDomain.ListFilter{
		PropertyID: q.PropertyID,
		UserID:     q.UserID,
		Rating:     q.Rating,
		Search:     q.Search,
		Status:     reviewDomain.StatusApproved,
	}
	if actor.Can(auth.CapModerateReviews) {
		filter.Status = ""
		if q.Status != "" {
			status, err := reviewDomain.ParseStatus(q.Status)
			if err != nil {
				return nil, 0, err
			}
			filter.Status = status
		}
	}

	items, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*ReviewDTO, len(items))
	for i, r := range items {
		dtos[i] = toReviewDTO(r)
	}
	return dtos, total, nil
}

// GetReview returns one review. A review that is not approved is only visible to its author
// and moderators.
func (s *ReviewService) GetReview(ctx context.Context, actor Actor, id uuid.UUID) (*ReviewDTO, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsPublic() && r.UserID() != actor.UserID && !actor.Can(auth.CapModerateReviews) {
		return nil, domain.NewNotFoundError("Review", id.String())
	}
	return toReviewDTO(r), nil
}

// ModerateReview approves or rejects a review.
func (s *ReviewService) ModerateReview(ctx context.Context, actor Actor, id uuid.UUID, req ModerateReviewRequest) (*ReviewDTO, error) {
	if !actor.Can(auth.CapModerateReviews) {
		return nil, domain.NewForbiddenError("not allowed to moderate reviews")
	}
	status, err := reviewDomain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Moderate(status, s.clock.Now()) {
		return toReviewDTO(r), nil
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("review moderated",
		zap.String("review_id", id.String()),
		zap.String("status", string(status)),
		zap.String("moderator_id", actor.UserID.String()),
	)
	return toReviewDTO(r), nil
}

// DeleteReview removes a review. Authors may delete their own.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, id uuid.UUID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID() != actor.UserID && !actor.Can(auth.CapModerateReviews) {
		return domain.NewForbiddenError("not allowed to delete this review")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("review deleted", zap.String("review_id", id.String()))
	return nil
}

func (s *ReviewService) requireProperty(ctx context.Context, id uuid.UUID) error {
	ok, err := s.properties.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("Property", id.String())
	}
	return nil
}

func toReviewDTO(r *reviewDomain.Review) *ReviewDTO {
	images := r.ImageURLs()
	if images == nil {
		images = []string{}
	}
	return &ReviewDTO{
		ID:         r.ID(),
		PropertyID: r.PropertyID(),
		UserID:     r.UserID(),
		Rating:     r.Rating(),
		Comment:    r.Comment(),
		Images:     images,
		Status:     string(r.Status()),
		CreatedAt:  r.CreatedAt(),
		UpdatedAt:  r.UpdatedAt(),
	}
}
