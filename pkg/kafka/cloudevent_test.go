package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	BookingID string `json:"booking_id"`
	Nights    int    `json:"nights"`
}

func TestCloudEvent_RoundTrip(t *testing.T) {
	evt, err := NewCloudEvent("service-booking", "booking.created", "bk-1", samplePayload{BookingID: "bk-1", Nights: 3})
	require.NoError(t, err)
	assert.Equal(t, "1.0", evt.SpecVersion)
	assert.NotEmpty(t, evt.ID)

	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "booking.created", parsed.Type)
	assert.Equal(t, "bk-1", parsed.Subject)

	var got samplePayload
	require.NoError(t, parsed.ParseData(&got))
	assert.Equal(t, 3, got.Nights)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}
