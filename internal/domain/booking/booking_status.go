package booking

import (
	"fmt"

	"github.com/eastmond-villas/service-booking/pkg/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Guard names the check that must pass before a transition is applied.
type Guard int

const (
	// GuardNone means the status is assigned directly.
	GuardNone Guard = iota
	// GuardOverlap means the stay must not overlap another approved booking of the same property.
	GuardOverlap
)

// transitions is the full from × to table. A missing pair is not a legal transition.
// Every entry into approved is guarded by the overlap check; approved → pending sends a
// booking back for re-review.
var transitions = map[BookingStatus]map[BookingStatus]Guard{
	StatusPending: {
		StatusApproved:  GuardOverlap,
		StatusRejected:  GuardNone,
		StatusCancelled: GuardNone,
		StatusCompleted: GuardNone,
	},
	StatusApproved: {
		StatusPending:   GuardNone,
		StatusRejected:  GuardNone,
		StatusCancelled: GuardNone,
		StatusCompleted: GuardNone,
	},
	StatusRejected: {
		StatusPending:   GuardNone,
		StatusApproved:  GuardOverlap,
		StatusCancelled: GuardNone,
		StatusCompleted: GuardNone,
	},
	StatusCancelled: {
		StatusPending:   GuardNone,
		StatusApproved:  GuardOverlap,
		StatusRejected:  GuardNone,
		StatusCompleted: GuardNone,
	},
	StatusCompleted: {
		StatusPending:   GuardNone,
		StatusApproved:  GuardOverlap,
		StatusRejected:  GuardNone,
		StatusCancelled: GuardNone,
	},
}

var terminalStatuses = map[BookingStatus]bool{
	StatusRejected:  true,
	StatusCancelled: true,
	StatusCompleted: true,
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := transitions[s]
	return exists
}

// TransitionTo looks up the table entry for s → target.
func (s BookingStatus) TransitionTo(target BookingStatus) (Guard, bool) {
	guard, ok := transitions[s][target]
	return guard, ok
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	_, ok := s.TransitionTo(target)
	return ok
}

// IsTerminal reports whether the booking no longer blocks or awaits anything.
// Managers may still move a terminal booking; this only describes business intent.
func (s BookingStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

// BlocksDates reports whether a booking in this status occupies the property.
func (s BookingStatus) BlocksDates() bool {
	return s == StatusApproved
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", domain.New(domain.CodeInvalidStatus, fmt.Sprintf("invalid booking status: %q", s))
	}
	return status, nil
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted}
}
