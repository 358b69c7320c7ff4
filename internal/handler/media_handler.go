package handler

import (
	"net/http"
	"strconv"

	"github.com/eastmond-villas/service-booking/internal/application"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20

// MediaHandler handles HTTP requests for property media.
type MediaHandler struct {
	service *application.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(service *application.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// RegisterRoutes registers media routes.
func (h *MediaHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	manage := middleware.RequireCapability(auth.CapManageProperties)

	r.GET("/api/v1/properties/:id/media", h.ListMedia)

	props := r.Group("/api/v1/properties/:id/media")
	props.Use(authMW, manage)
	{
		props.POST("", h.AddMedia)
		props.POST("/upload", h.UploadMedia)
	}

	r.DELETE("/api/v1/media/:id", authMW, manage, h.DeleteMedia)
}

// AddMedia handles POST /api/v1/properties/:id/media.
func (h *MediaHandler) AddMedia(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.AddMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddMedia(c.Request.Context(), actor, propertyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UploadMedia handles POST /api/v1/properties/:id/media/upload (multipart field "file").
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "unreadable file")
		return
	}
	defer f.Close()

	order, _ := strconv.Atoi(c.PostForm("order"))
	isPrimary, _ := strconv.ParseBool(c.PostForm("is_primary"))

	result, err := h.service.UploadMedia(c.Request.Context(), actor, propertyID, application.UploadMediaRequest{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
		Category:    c.PostForm("category"),
		Caption:     c.PostForm("caption"),
		IsPrimary:   isPrimary,
		Order:       order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMedia handles GET /api/v1/properties/:id/media.
func (h *MediaHandler) ListMedia(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	items, err := h.service.ListMedia(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// DeleteMedia handles DELETE /api/v1/media/:id.
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	mediaID, ok := parseIDParam(c, "id", "media")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.service.DeleteMedia(c.Request.Context(), actor, mediaID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
