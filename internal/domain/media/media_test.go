package media

import (
	"testing"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropertyMedia(t *testing.T) {
	m, err := NewPropertyMedia(uuid.New(), uuid.New(), TypeImage, "", "https://cdn.example.com/a.jpg", "Pool", true, 0)
	require.NoError(t, err)
	assert.Equal(t, CategoryOther, m.Category())
	assert.True(t, m.IsPrimary())

	_, err = NewPropertyMedia(uuid.New(), uuid.New(), Type("audio"), CategoryOther, "u", "", false, 0)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewPropertyMedia(uuid.New(), uuid.New(), TypeImage, Category("roof"), "u", "", false, 0)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewPropertyMedia(uuid.New(), uuid.New(), TypeImage, CategoryOther, "", "", false, 0)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestTypeFromContentType(t *testing.T) {
	got, err := TypeFromContentType("image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, TypeImage, got)

	got, err = TypeFromContentType("video/mp4")
	require.NoError(t, err)
	assert.Equal(t, TypeVideo, got)

	_, err = TypeFromContentType("application/pdf")
	assert.Error(t, err)
}
