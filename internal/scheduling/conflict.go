package scheduling

import (
	"fmt"

	"zencontrol/internal/models"
)

// Durations resolves a service identifier to its length in minutes.
type Durations interface {
	Duration(serviceID string) (int, bool)
}

// FindConflict reports whether candidate overlaps another booking of the same
// provider on the same date. The booking whose ID equals excludeID is ignored.
func FindConflict(durations Durations, candidate *models.Booking, existing []models.Booking, excludeID string) (bool, error) {
	b, err := FindConflicting(durations, candidate, existing, excludeID)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

// FindConflicting returns the first booking overlapping candidate, or nil.
// Existing bookings with a stale service reference or a malformed time are skipped.
func FindConflicting(durations Durations, candidate *models.Booking, existing []models.Booking, excludeID string) (*models.Booking, error) {
	duration, ok := durations.Duration(candidate.ServiceID)
	if !ok {
		return nil, fmt.Errorf("%w: service '%s'", ErrInvalidReference, candidate.ServiceID)
	}

	start, err := candidate.StartMinute()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	end := start + duration

	for i := range existing {
		b := &existing[i]
		if b.ProviderID != candidate.ProviderID || b.Date != candidate.Date {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}

		d, ok := durations.Duration(b.ServiceID)
		if !ok {
			continue
		}
		bStart, err := b.StartMinute()
		if err != nil {
			continue
		}

		if isOverlapping(start, end, bStart, bStart+d) {
			return b, nil
		}
	}

	return nil, nil
}

// isOverlapping checks [start1, end1) against [start2, end2); touching ends do not overlap.
func isOverlapping(start1, end1, start2, end2 int) bool {
	return start1 < end2 && end1 > start2
}
