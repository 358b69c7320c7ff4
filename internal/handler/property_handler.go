package handler

import (
	"strconv"
	"time"

	"github.com/eastmond-villas/service-booking/internal/application"
	bookingDomain "github.com/eastmond-villas/service-booking/internal/domain/booking"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
)

// PropertyHandler handles HTTP requests for listings, their availability and their counters.
type PropertyHandler struct {
	properties   *application.PropertyService
	availability *application.AvailabilityService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(properties *application.PropertyService, availability *application.AvailabilityService) *PropertyHandler {
	return &PropertyHandler{properties: properties, availability: availability}
}

// RegisterRoutes registers property routes. Reads are public; an optional token lets managers
// see unpublished listings.
func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtManager)
	manage := middleware.RequireCapability(auth.CapManageProperties)

	public := r.Group("/api/v1/properties")
	public.Use(optionalAuth)
	{
		public.GET("", h.ListProperties)
		public.GET("/:id", h.GetProperty)
		public.GET("/:id/availability", h.GetAvailability)
		public.GET("/:id/download", h.RecordDownload)
	}

	managed := r.Group("/api/v1/properties")
	managed.Use(authMW)
	{
		managed.POST("", manage, h.CreateProperty)
		managed.PUT("/:id", manage, h.UpdateProperty)
		managed.POST("/:id/publish", manage, h.PublishProperty)
		managed.POST("/:id/archive", manage, h.ArchiveProperty)
		managed.POST("/:id/assign", middleware.RequireCapability(auth.CapAssignAgents), h.AssignAgent)
		managed.GET("/:id/analytics", middleware.RequireCapability(auth.CapViewAnalytics), h.GetAnalytics)
	}
}

// CreateProperty handles POST /api/v1/properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.CreateProperty(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListProperties handles GET /api/v1/properties.
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.properties.ListProperties(c.Request.Context(), actorFrom(c), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetProperty handles GET /api/v1/properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	result, err := h.properties.GetProperty(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProperty handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.UpdateProperty(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PublishProperty handles POST /api/v1/properties/:id/publish.
func (h *PropertyHandler) PublishProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := h.properties.PublishProperty(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ArchiveProperty handles POST /api/v1/properties/:id/archive.
func (h *PropertyHandler) ArchiveProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := h.properties.ArchiveProperty(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AssignAgent handles POST /api/v1/properties/:id/assign.
func (h *PropertyHandler) AssignAgent(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.AssignAgent(c.Request.Context(), actor, id, req.AgentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RecordDownload handles GET /api/v1/properties/:id/download.
func (h *PropertyHandler) RecordDownload(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	result, err := h.properties.RecordDownload(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetAvailability handles GET /api/v1/properties/:id/availability?month=&year=.
// Missing parameters default to the current month.
func (h *PropertyHandler) GetAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}

	now := time.Now().UTC()
	month, monthErr := queryInt(c, "month", int(now.Month()))
	year, yearErr := queryInt(c, "year", now.Year())
	if monthErr != nil || yearErr != nil {
		// An unknown property is reported before a malformed period.
		if err := h.availability.RequireProperty(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Error(c, domain.New(domain.CodeInvalidPeriod, "month and year must be integers"))
		return
	}

	ranges, err := h.availability.ListBookedRanges(c.Request.Context(), id, month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ranges)
}

// GetAnalytics handles GET /api/v1/properties/:id/analytics?from=&to=.
func (h *PropertyHandler) GetAnalytics(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "property")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		d, err := bookingDomain.ParseDate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := bookingDomain.ParseDate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		to = d
	}

	summary, err := h.properties.GetAnalytics(c.Request.Context(), actor, id, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
