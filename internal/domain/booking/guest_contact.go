package booking

import (
	"strings"

	"github.com/eastmond-villas/service-booking/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// validate uses the same rules as gin's request binding.
var validate = validator.New()

// GuestContact is an immutable value object holding the details of the person staying.
type GuestContact struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Guests   int    `json:"guests"`
	Notes    string `json:"notes"`
}

// Validate checks the contact fields required to confirm a stay.
func (g GuestContact) Validate() error {
	if strings.TrimSpace(g.FullName) == "" {
		return domain.NewValidationError("full name is required")
	}
	if err := validate.Var(g.Email, "required,email"); err != nil {
		return domain.NewValidationError("a valid email is required")
	}
	if strings.TrimSpace(g.Phone) == "" {
		return domain.NewValidationError("phone is required")
	}
	if g.Guests < 1 {
		return domain.NewValidationError("at least one guest is required")
	}
	return nil
}

// Matches reports whether the search text appears in the name, email or phone.
func (g GuestContact) Matches(search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(g.FullName), q) ||
		strings.Contains(strings.ToLower(g.Email), q) ||
		strings.Contains(strings.ToLower(g.Phone), q)
}
