package handler

import (
	"strconv"

	"github.com/eastmond-villas/service-booking/internal/application"
	"github.com/eastmond-villas/service-booking/pkg/middleware"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFrom builds the service-level caller from what the auth middleware stored. Anonymous
// callers get a zero actor.
func actorFrom(c *gin.Context) application.Actor {
	userID, _ := middleware.GetUserID(c)
	caps, _ := middleware.GetCapabilities(c)
	return application.Actor{UserID: userID, Capabilities: caps}
}

// requireActor is actorFrom for routes behind AuthMiddleware.
func requireActor(c *gin.Context) (application.Actor, bool) {
	actor := actorFrom(c)
	if actor.UserID == uuid.Nil {
		response.Unauthorized(c, "unauthorized")
		return actor, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context, name, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
