package middleware

import (
	"strings"

	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/eastmond-villas/service-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID       = "auth.user_id"
	ctxUserRole     = "auth.role"
	ctxCapabilities = "auth.capabilities"
)

// AuthMiddleware verifies the bearer token and stores the caller identity in the context.
// The role is resolved to a capability set here, once.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, "authorization header must be: Bearer <token>")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxCapabilities, auth.CapabilitiesFor(claims.Role))
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a bearer token is sent and lets anonymous
// requests through with no capabilities. A token that is sent but invalid is still rejected.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	required := AuthMiddleware(jwtManager)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

// RequireCapability aborts with 403 unless the caller holds every bit of want.
func RequireCapability(want auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps, ok := GetCapabilities(c)
		if !ok || !caps.Has(want) {
			response.Forbidden(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the authenticated user's role.
func GetUserRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(ctxUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}

// GetCapabilities returns the capability set resolved for the caller.
func GetCapabilities(c *gin.Context) (auth.Capability, bool) {
	v, ok := c.Get(ctxCapabilities)
	if !ok {
		return 0, false
	}
	caps, ok := v.(auth.Capability)
	return caps, ok
}
