package scheduling

import (
	"fmt"

	"zencontrol/internal/models"
)

// SlotInfo is one candidate start time inside a provider's shift.
type SlotInfo struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "10:50"
	Available bool   `json:"available"`
}

// FreeSlots lists start times every step minutes within the provider's shift
// where serviceID would fit. It returns nil when the provider is off that day.
// Shifts only shape the suggestions; Validate never enforces them.
func FreeSlots(durations Durations, provider *models.Provider, date, serviceID string, existing []models.Booking, step int) ([]SlotInfo, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: date: %v", ErrInvalidField, err)
	}
	if !IsAvailable(provider, day) {
		return nil, nil
	}

	duration, ok := durations.Duration(serviceID)
	if !ok {
		return nil, fmt.Errorf("%w: service '%s'", ErrInvalidReference, serviceID)
	}
	if step <= 0 {
		step = 30
	}

	shiftStart, err := models.MinutesOfDay(provider.ShiftStart)
	if err != nil {
		return nil, fmt.Errorf("parse shift start: %w", err)
	}
	shiftEnd, err := models.MinutesOfDay(provider.ShiftEnd)
	if err != nil {
		return nil, fmt.Errorf("parse shift end: %w", err)
	}

	var slots []SlotInfo
	for cursor := shiftStart; cursor+duration <= shiftEnd; cursor += step {
		candidate := &models.Booking{
			ProviderID: provider.ID,
			ServiceID:  serviceID,
			Date:       date,
			Time:       models.FormatClock(cursor),
		}
		conflict, err := FindConflict(durations, candidate, existing, "")
		if err != nil {
			return nil, err
		}
		slots = append(slots, SlotInfo{
			Start:     candidate.Time,
			End:       models.FormatClock(cursor + duration),
			Available: !conflict,
		})
	}

	return slots, nil
}
