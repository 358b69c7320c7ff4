package auth

// Role is the user role carried in access tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// Capability is a set of permissions resolved from a role at the HTTP boundary.
// Services only ever see capabilities, never role strings.
type Capability uint16

const (
	// CapBook allows creating bookings and cancelling one's own bookings.
	CapBook Capability = 1 << iota
	// CapManageBookings allows any booking status transition and reading every booking.
	CapManageBookings
	// CapManageProperties allows creating and editing properties and their media.
	CapManageProperties
	// CapAssignAgents allows assigning properties to agents.
	CapAssignAgents
	// CapViewAnalytics allows reading property counters.
	CapViewAnalytics
	// CapModerateReviews allows reading every review and approving or rejecting them.
	CapModerateReviews
)

var roleCapabilities = map[Role]Capability{
	RoleAdmin:    CapBook | CapManageBookings | CapManageProperties | CapAssignAgents | CapViewAnalytics | CapModerateReviews,
	RoleManager:  CapBook | CapManageBookings | CapManageProperties | CapAssignAgents | CapViewAnalytics | CapModerateReviews,
	RoleAgent:    CapBook | CapManageProperties | CapViewAnalytics,
	RoleCustomer: CapBook,
}

// CapabilitiesFor resolves the capability set of a role. Unknown roles get none.
func CapabilitiesFor(role Role) Capability {
	return roleCapabilities[role]
}

// Has reports whether every bit of want is present.
func (c Capability) Has(want Capability) bool {
	return want != 0 && c&want == want
}
