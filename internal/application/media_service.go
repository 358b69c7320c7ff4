package application

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	mediaDomain "github.com/eastmond-villas/service-booking/internal/domain/media"
	propertyDomain "github.com/eastmond-villas/service-booking/internal/domain/property"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddMediaRequest registers media that is already hosted somewhere.
type AddMediaRequest struct {
	MediaType string `json:"media_type" binding:"required"`
	Category  string `json:"category"`
	URL       string `json:"url" binding:"required,url"`
	Caption   string `json:"caption"`
	IsPrimary bool   `json:"is_primary"`
	Order     int    `json:"order"`
}

// UploadMediaRequest describes a file streamed through the service into object storage.
type UploadMediaRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Category    string
	Caption     string
	IsPrimary   bool
	Order       int
}

// MediaDTO is the API response representation of property media.
type MediaDTO struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	MediaType  string    `json:"media_type"`
	Category   string    `json:"category"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
	IsPrimary  bool      `json:"is_primary"`
	Order      int       `json:"order"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MediaService handles property media use cases.
type MediaService struct {
	repo       mediaDomain.MediaRepository
	properties propertyDomain.PropertyRepository
	store      MediaStore
	logger     *zap.Logger
}

// NewMediaService creates a new MediaService. store may be nil when uploads are disabled.
func NewMediaService(repo mediaDomain.MediaRepository, properties propertyDomain.PropertyRepository, store MediaStore, logger *zap.Logger) *MediaService {
	return &MediaService{repo: repo, properties: properties, store: store, logger: logger}
}

// AddMedia attaches an externally hosted file to a property.
func (s *MediaService) AddMedia(ctx context.Context, actor Actor, propertyID uuid.UUID, req AddMediaRequest) (*MediaDTO, error) {
	if err := s.authorize(ctx, actor, propertyID); err != nil {
		return nil, err
	}

	m, err := mediaDomain.NewPropertyMedia(
		propertyID,
		actor.UserID,
		mediaDomain.Type(req.MediaType),
		mediaDomain.Category(req.Category),
		req.URL,
		req.Caption,
		req.IsPrimary,
		req.Order,
	)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, m)
}

// UploadMedia stores the file in object storage and attaches it to the property.
func (s *MediaService) UploadMedia(ctx context.Context, actor Actor, propertyID uuid.UUID, req UploadMediaRequest) (*MediaDTO, error) {
	if s.store == nil {
		return nil, domain.NewValidationError("file uploads are not enabled")
	}
	if err := s.authorize(ctx, actor, propertyID); err != nil {
		return nil, err
	}

	mediaType, err := mediaDomain.TypeFromContentType(req.ContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("properties/%s/%s%s", propertyID, uuid.NewString(), strings.ToLower(path.Ext(req.Filename)))
	url, err := s.store.Upload(ctx, key, req.Body, req.Size, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	m, err := mediaDomain.NewPropertyMedia(
		propertyID,
		actor.UserID,
		mediaType,
		mediaDomain.Category(req.Category),
		url,
		req.Caption,
		req.IsPrimary,
		req.Order,
	)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, m)
}

// ListMedia returns the media of a property.
func (s *MediaService) ListMedia(ctx context.Context, propertyID uuid.UUID) ([]*MediaDTO, error) {
	items, err := s.repo.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*MediaDTO, len(items))
	for i, m := range items {
		dtos[i] = toMediaDTO(m)
	}
	return dtos, nil
}

// DeleteMedia detaches media from its property. The stored object is left in place.
func (s *MediaService) DeleteMedia(ctx context.Context, actor Actor, mediaID uuid.UUID) error {
	m, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, m.PropertyID()); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, mediaID); err != nil {
		return err
	}

	s.logger.Info("media deleted",
		zap.String("media_id", mediaID.String()),
		zap.String("property_id", m.PropertyID().String()),
	)
	return nil
}

func (s *MediaService) authorize(ctx context.Context, actor Actor, propertyID uuid.UUID) error {
	if !actor.Can(auth.CapManageProperties) {
		return domain.NewForbiddenError("not allowed to manage property media")
	}
	p, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if !actor.Can(auth.CapAssignAgents) && !p.CanBeManagedBy(actor.UserID) {
		return domain.NewForbiddenError("property is not assigned to this user")
	}
	return nil
}

func (s *MediaService) save(ctx context.Context, m *mediaDomain.PropertyMedia) (*MediaDTO, error) {
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("media added",
		zap.String("property_id", m.PropertyID().String()),
		zap.String("media_type", string(m.MediaType())),
	)
	return toMediaDTO(m), nil
}

func toMediaDTO(m *mediaDomain.PropertyMedia) *MediaDTO {
	return &MediaDTO{
		ID:         m.ID(),
		PropertyID: m.PropertyID(),
		MediaType:  string(m.MediaType()),
		Category:   string(m.Category()),
		URL:        m.URL(),
		Caption:    m.Caption(),
		IsPrimary:  m.IsPrimary(),
		Order:      m.Order(),
		UploadedBy: m.UploadedBy(),
		CreatedAt:  m.CreatedAt(),
	}
}
