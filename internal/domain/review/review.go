package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
)

// MaxImages is the number of photos a guest may attach to one review.
const MaxImages = 5

// Status is the moderation state of a review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", domain.New(domain.CodeInvalidStatus, fmt.Sprintf("invalid review status: %s", raw))
	}
	return s, nil
}

// Review is a guest's rating of a property. New reviews wait for moderation and are only
// public once approved.
type Review struct {
	id         uuid.UUID
	propertyID uuid.UUID
	userID     uuid.UUID
	rating     int
	comment    string
	imageURLs  []string
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

// NewReview creates a pending review.
func NewReview(propertyID, userID uuid.UUID, rating int, comment string, imageURLs []string) (*Review, error) {
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, domain.NewValidationError("comment is required")
	}
	if len(imageURLs) > MaxImages {
		return nil, domain.NewValidationError(fmt.Sprintf("you can upload a maximum of %d images", MaxImages))
	}

	now := time.Now().UTC()
	return &Review{
		id:         uuid.New(),
		propertyID: propertyID,
		userID:     userID,
		rating:     rating,
		comment:    comment,
		imageURLs:  append([]string(nil), imageURLs...),
		status:     StatusPending,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Review from persistence.
func Reconstruct(
	id, propertyID, userID uuid.UUID,
	rating int,
	comment string,
	imageURLs []string,
	status Status,
	createdAt, updatedAt time.Time,
) *Review {
	return &Review{
		id:         id,
		propertyID: propertyID,
		userID:     userID,
		rating:     rating,
		comment:    comment,
		imageURLs:  imageURLs,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Moderate sets the review's status. It reports whether anything changed.
func (r *Review) Moderate(status Status, now time.Time) bool {
	if r.status == status {
		return false
	}
	r.status = status
	r.updatedAt = now.UTC()
	return true
}

// IsPublic reports whether the review is visible to everyone.
func (r *Review) IsPublic() bool { return r.status == StatusApproved }

// Getters.
func (r *Review) ID() uuid.UUID         { return r.id }
func (r *Review) PropertyID() uuid.UUID { return r.propertyID }
func (r *Review) UserID() uuid.UUID     { return r.userID }
func (r *Review) Rating() int           { return r.rating }
func (r *Review) Comment() string       { return r.comment }
func (r *Review) ImageURLs() []string   { return append([]string(nil), r.imageURLs...) }
func (r *Review) Status() Status        { return r.status }
func (r *Review) CreatedAt() time.Time  { return r.createdAt }
func (r *Review) UpdatedAt() time.Time  { return r.updatedAt }
