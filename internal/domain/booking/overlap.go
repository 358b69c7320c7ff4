package booking

import "github.com/google/uuid"

// FindConflict returns the first approved booking in candidates, other than excluding,
// whose stay overlaps proposed. It returns nil when the dates are free.
func FindConflict(candidates []*Booking, proposed DateRange, excluding uuid.UUID) *Booking {
	for _, b := range candidates {
		if b.ID() == excluding || !b.Status().BlocksDates() {
			continue
		}
		if b.Dates().Overlaps(proposed) {
			return b
		}
	}
	return nil
}

// HasConflict reports whether proposed overlaps any approved booking except excluding.
func HasConflict(candidates []*Booking, proposed DateRange, excluding uuid.UUID) bool {
	return FindConflict(candidates, proposed, excluding) != nil
}
