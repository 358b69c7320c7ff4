package favorite

import (
	"testing"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFavorite(t *testing.T) {
	userID, propertyID := uuid.New(), uuid.New()

	f, err := NewFavorite(userID, propertyID)
	require.NoError(t, err)
	assert.Equal(t, userID, f.UserID())
	assert.Equal(t, propertyID, f.PropertyID())
	assert.NotEqual(t, uuid.Nil, f.ID())

	_, err = NewFavorite(userID, uuid.Nil)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	_, err = NewFavorite(uuid.Nil, propertyID)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}
