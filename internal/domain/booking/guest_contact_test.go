package booking

import (
	"testing"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGuestContact_ValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ana@example.com", true},
		{"ana.reyes+villa@mail.example.mx", true},
		{"", false},
		{"nope", false},
		{"Ana Reyes <ana@example.com>", false},
		{"ana@", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			g := GuestContact{FullName: "Ana Reyes", Email: tt.email, Phone: "+1 555 0100", Guests: 2}
			err := g.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, domain.IsCode(err, domain.CodeValidation), "got %v", err)
		})
	}
}
