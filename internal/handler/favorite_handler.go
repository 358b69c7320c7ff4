package handler

import (
	"net/http"

	"github.com/eastmond-villas/service-booking/internal/application"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FavoriteHandler handles HTTP requests for a user's saved properties.
type FavoriteHandler struct {
	service *application.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service *application.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// RegisterRoutes registers favorite routes.
func (h *FavoriteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	favorites := r.Group("/api/v1/favorites")
	favorites.Use(middleware.AuthMiddleware(jwtManager))
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("/toggle", h.ToggleFavorite)
	}
}

// ListFavorites handles GET /api/v1/favorites[?property=<id>].
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var propertyID uuid.UUID
	if raw := c.Query("property"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid property ID")
			return
		}
		propertyID = id
	}

	page, limit := parsePagination(c)
	items, total, err := h.service.ListFavorites(c.Request.Context(), actor, propertyID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, page, limit)
}

// ToggleFavorite handles POST /api/v1/favorites/toggle.
// Responds 201 when the property was added and 200 when it was removed.
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "property is required")
		return
	}
	if req.PropertyID == uuid.Nil {
		response.BadRequest(c, "property is required")
		return
	}

	added, fav, err := h.service.ToggleFavorite(c.Request.Context(), actor, req.PropertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !added {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"detail":       "Removed from favorites",
			"is_favorited": false,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"detail":       "Added to favorites",
		"is_favorited": true,
		"data":         fav,
	})
}
