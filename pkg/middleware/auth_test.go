package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eastmond-villas/service-booking/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(jwtManager *auth.JWTManager, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(jwtManager)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	router.GET("/protected", chain...)
	return router
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-key-123456789", time.Hour, time.Hour)
	router := setupTestRouter(jwtManager)

	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "guest@example.com", auth.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "customer")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-key-123456789", time.Hour, time.Hour)
	router := setupTestRouter(jwtManager)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authorization header is required")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-key-123456789", time.Hour, time.Hour)
	router := setupTestRouter(jwtManager)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCapability(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-key-123456789", time.Hour, time.Hour)
	router := setupTestRouter(jwtManager, RequireCapability(auth.CapManageBookings))

	tests := []struct {
		role auth.Role
		want int
	}{
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleManager, http.StatusOK},
		{auth.RoleAgent, http.StatusForbidden},
		{auth.RoleCustomer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			token, err := jwtManager.GenerateAccessToken(uuid.New(), "x@example.com", tt.role)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtManager := auth.NewJWTManager("test-secret-key-123456789", time.Hour, time.Hour)
	router := gin.New()
	router.GET("/public", OptionalAuthMiddleware(jwtManager), func(c *gin.Context) {
		caps, _ := GetCapabilities(c)
		c.JSON(http.StatusOK, gin.H{"manage": caps.Has(auth.CapManageProperties)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"manage":false}`, w.Body.String())

	token, err := jwtManager.GenerateAccessToken(uuid.New(), "m@example.com", auth.RoleManager)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"manage":true}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
