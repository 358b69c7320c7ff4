package application

import (
	"context"
	"testing"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBookedRanges(t *testing.T) {
	env := newTestEnv(t)
	env.approved(t, "2025-06-10", "2025-06-15")
	env.createBooking(t, customerActor(), "2025-06-20", "2025-06-22")

	ranges, err := env.availSvc.ListBookedRanges(context.Background(), env.property.ID(), 6, 2025)
	require.NoError(t, err)
	assert.Equal(t, []BookedRange{{Start: "2025-06-10", End: "2025-06-15"}}, ranges)
}

func TestListBookedRanges_EmptyMonth(t *testing.T) {
	env := newTestEnv(t)

	ranges, err := env.availSvc.ListBookedRanges(context.Background(), env.property.ID(), 8, 2025)
	require.NoError(t, err)
	assert.NotNil(t, ranges)
	assert.Empty(t, ranges)
}

func TestListBookedRanges_ClipsToMonth(t *testing.T) {
	env := newTestEnv(t)
	env.approved(t, "2025-06-28", "2025-07-03")
	env.approved(t, "2025-07-20", "2025-07-22")

	june, err := env.availSvc.ListBookedRanges(context.Background(), env.property.ID(), 6, 2025)
	require.NoError(t, err)
	assert.Equal(t, []BookedRange{{Start: "2025-06-28", End: "2025-06-30"}}, june)

	july, err := env.availSvc.ListBookedRanges(context.Background(), env.property.ID(), 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, []BookedRange{
		{Start: "2025-07-01", End: "2025-07-03"},
		{Start: "2025-07-20", End: "2025-07-22"},
	}, july)
}

func TestBookedRanges_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		propertyID uuid.UUID
		month      int
		year       int
		wantCode   domain.ErrorCode
	}{
		{"month 13", env.property.ID(), 13, 2025, domain.CodeInvalidPeriod},
		{"month 0", env.property.ID(), 0, 2025, domain.CodeInvalidPeriod},
		{"year 0", env.property.ID(), 6, 0, domain.CodeInvalidPeriod},
		{"unknown property", uuid.New(), 6, 2025, domain.CodeNotFound},
		{"unknown property with bad month", uuid.New(), 13, 2025, domain.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := env.availSvc.BookedRanges(context.Background(), tt.propertyID, tt.month, tt.year)
			assert.Nil(t, seq)
			assert.True(t, domain.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestBookedRanges_RequeriesOnEachIteration(t *testing.T) {
	env := newTestEnv(t)
	env.approved(t, "2025-06-10", "2025-06-15")

	seq, err := env.availSvc.BookedRanges(context.Background(), env.property.ID(), 6, 2025)
	require.NoError(t, err)

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 1, count())

	env.approved(t, "2025-06-20", "2025-06-25")
	assert.Equal(t, 2, count())
}

func TestBookedRanges_StopsEarly(t *testing.T) {
	env := newTestEnv(t)
	env.approved(t, "2025-06-02", "2025-06-04")
	env.approved(t, "2025-06-10", "2025-06-15")

	seq, err := env.availSvc.BookedRanges(context.Background(), env.property.ID(), 6, 2025)
	require.NoError(t, err)

	var seen []BookedRange
	for r, err := range seq {
		require.NoError(t, err)
		seen = append(seen, r)
		break
	}
	assert.Equal(t, []BookedRange{{Start: "2025-06-02", End: "2025-06-04"}}, seen)
}
