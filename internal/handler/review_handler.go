package handler

import (
	"net/http"
	"strconv"

	"github.com/eastmond-villas/service-booking/internal/application"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReviewHandler handles HTTP requests for property reviews.
type ReviewHandler struct {
	service *application.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers review routes.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	reviews := r.Group("/api/v1/reviews")
	reviews.Use(middleware.AuthMiddleware(jwtManager))
	{
		reviews.GET("", h.ListReviews)
		reviews.POST("", h.CreateReview)
		reviews.GET("/:id", h.GetReview)
		reviews.PATCH("/:id/status", middleware.RequireCapability(auth.CapModerateReviews), h.ModerateReview)
		reviews.DELETE("/:id", h.DeleteReview)
	}
}

// CreateReview handles POST /api/v1/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReview(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListReviews handles GET /api/v1/reviews.
// Query: property, user, rating, status, search, page, limit.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	q := application.ReviewQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if raw := c.Query("property"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid property ID")
			return
		}
		q.PropertyID = id
	}
	if raw := c.Query("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid user ID")
			return
		}
		q.UserID = id
	}
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "rating must be an integer")
			return
		}
		q.Rating = rating
	}

	page, limit := parsePagination(c)
	items, total, err := h.service.ListReviews(c.Request.Context(), actor, q, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, page, limit)
}

// GetReview handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "review")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.service.GetReview(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ModerateReview handles PATCH /api/v1/reviews/:id/status.
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "review")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ModerateReview(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview handles DELETE /api/v1/reviews/:id.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "review")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.service.DeleteReview(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
