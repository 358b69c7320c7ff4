package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-123456789", time.Hour, 24*time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "guest@example.com", RoleCustomer)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "guest@example.com", claims.Email)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestJWTManager_RejectsRefreshTokenAsAccess(t *testing.T) {
	m := NewJWTManager("test-secret-key-123456789", time.Hour, 24*time.Hour)

	token, err := m.GenerateRefreshToken(uuid.New(), "guest@example.com", RoleCustomer)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	issuerManager := NewJWTManager("secret-one-123456789", time.Hour, time.Hour)
	verifier := NewJWTManager("secret-two-123456789", time.Hour, time.Hour)

	token, err := issuerManager.GenerateAccessToken(uuid.New(), "a@b.c", RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret-key-123456789", -time.Minute, time.Hour)

	token, err := m.GenerateAccessToken(uuid.New(), "a@b.c", RoleManager)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsUnknownRole(t *testing.T) {
	secret := "test-secret-key-123456789"
	m := NewJWTManager(secret, time.Hour, time.Hour)

	claims := Claims{
		UserID:    uuid.New(),
		Role:      Role("superuser"),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		role Role
		want Capability
		deny Capability
	}{
		{RoleAdmin, CapManageBookings | CapAssignAgents, 0},
		{RoleManager, CapManageBookings | CapViewAnalytics | CapModerateReviews, 0},
		{RoleAgent, CapManageProperties | CapViewAnalytics, CapModerateReviews},
		{RoleCustomer, CapBook, CapManageBookings | CapModerateReviews},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			caps := CapabilitiesFor(tt.role)
			assert.True(t, caps.Has(tt.want))
			if tt.deny != 0 {
				assert.False(t, caps.Has(tt.deny))
			}
		})
	}

	assert.Equal(t, Capability(0), CapabilitiesFor(Role("ghost")))
	assert.False(t, Capability(0).Has(0))
}
