package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
)

// Type distinguishes photos from video tours.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
)

// IsValid returns true if the media type is recognized.
func (t Type) IsValid() bool {
	return t == TypeImage || t == TypeVideo
}

// TypeFromContentType infers the media type from a MIME type.
func TypeFromContentType(contentType string) (Type, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return TypeImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return TypeVideo, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("unsupported content type: %s", contentType))
}

// Category groups media on the listing page.
type Category string

const (
	CategoryExterior Category = "exterior"
	CategoryInterior Category = "interior"
	CategoryBedroom  Category = "bedroom"
	CategoryOther    Category = "other"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryExterior, CategoryInterior, CategoryBedroom, CategoryOther:
		return true
	}
	return false
}

// PropertyMedia is a photo or video attached to a property.
type PropertyMedia struct {
	id         uuid.UUID
	propertyID uuid.UUID
	mediaType  Type
	category   Category
	url        string
	caption    string
	isPrimary  bool
	order      int
	uploadedBy uuid.UUID
	createdAt  time.Time
}

// NewPropertyMedia creates a media entry.
func NewPropertyMedia(
	propertyID, uploadedBy uuid.UUID,
	mediaType Type,
	category Category,
	url, caption string,
	isPrimary bool,
	order int,
) (*PropertyMedia, error) {
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	if !mediaType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid media type: %s", mediaType))
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid media category: %s", category))
	}
	if url == "" {
		return nil, domain.NewValidationError("media URL is required")
	}

	return &PropertyMedia{
		id:         uuid.New(),
		propertyID: propertyID,
		mediaType:  mediaType,
		category:   category,
		url:        url,
		caption:    caption,
		isPrimary:  isPrimary,
		order:      order,
		uploadedBy: uploadedBy,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a PropertyMedia from persistence.
func Reconstruct(
	id, propertyID uuid.UUID,
	mediaType Type,
	category Category,
	url, caption string,
	isPrimary bool,
	order int,
	uploadedBy uuid.UUID,
	createdAt time.Time,
) *PropertyMedia {
	return &PropertyMedia{
		id:         id,
		propertyID: propertyID,
		mediaType:  mediaType,
		category:   category,
		url:        url,
		caption:    caption,
		isPrimary:  isPrimary,
		order:      order,
		uploadedBy: uploadedBy,
		createdAt:  createdAt,
	}
}

// Getters.
func (m *PropertyMedia) ID() uuid.UUID         { return m.id }
func (m *PropertyMedia) PropertyID() uuid.UUID { return m.propertyID }
func (m *PropertyMedia) MediaType() Type       { return m.mediaType }
func (m *PropertyMedia) Category() Category    { return m.category }
func (m *PropertyMedia) URL() string           { return m.url }
func (m *PropertyMedia) Caption() string       { return m.caption }
func (m *PropertyMedia) IsPrimary() bool       { return m.isPrimary }
func (m *PropertyMedia) Order() int            { return m.order }
func (m *PropertyMedia) UploadedBy() uuid.UUID { return m.uploadedBy }
func (m *PropertyMedia) CreatedAt() time.Time  { return m.createdAt }
