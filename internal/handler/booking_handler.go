package handler

import (
	"github.com/eastmond-villas/service-booking/internal/application"
	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// statusChangeResponse is the body of a successful status change.
type statusChangeResponse struct {
	Booking       application.BookingDTO `json:"booking"`
	Changed       bool                   `json:"changed"`
	CalendarSync  string                 `json:"calendar_sync"`
	CalendarError string                 `json:"calendar_error,omitempty"`
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireCapability(auth.CapBook), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateStatus)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Managers see every booking, others their own.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	q, ok := parseBookingQuery(c)
	if !ok {
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id", "booking")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus handles PATCH /api/v1/bookings/:id with body {"status": "..."}.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id", "booking")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), actor, bookingID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toStatusChangeResponse(result))
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id", "booking")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toStatusChangeResponse(result))
}

func toStatusChangeResponse(r *application.TransitionResult) statusChangeResponse {
	resp := statusChangeResponse{
		Booking:      r.Booking,
		Changed:      r.Changed,
		CalendarSync: r.Calendar.Status(),
	}
	if r.Calendar.Failed() {
		resp.CalendarError = r.Calendar.Err.Error()
	}
	return resp
}

func parseBookingQuery(c *gin.Context) (application.BookingListQuery, bool) {
	page, limit := parsePagination(c)
	q := application.BookingListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	if raw := c.Query("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid property ID")
			return q, false
		}
		q.PropertyID = id
	}
	return q, true
}
