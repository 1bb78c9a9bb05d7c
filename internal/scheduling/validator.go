package scheduling

import (
	"fmt"
	"strings"

	"zencontrol/internal/models"
)

// Validator runs the booking submission checks in order:
// required fields, field formats, provider lookup, availability, conflicts.
type Validator struct {
	durations Durations
}

func NewValidator(durations Durations) *Validator {
	return &Validator{durations: durations}
}

// Validate returns nil when candidate can be committed against the current collections.
// A non-empty candidate.ID is treated as an edit and excluded from the conflict scan.
func (v *Validator) Validate(candidate *models.Booking, providers []models.Provider, existing []models.Booking) error {
	if err := checkRequired(candidate); err != nil {
		return err
	}

	day, err := models.ParseDate(candidate.Date)
	if err != nil {
		return fmt.Errorf("%w: date: %v", ErrInvalidField, err)
	}
	if _, err := models.MinutesOfDay(candidate.Time); err != nil {
		return fmt.Errorf("%w: time: %v", ErrInvalidField, err)
	}
	if !candidate.PointOfSale.Valid() {
		return fmt.Errorf("%w: point_of_sale '%s'", ErrInvalidField, candidate.PointOfSale)
	}
	if !candidate.Hotel.Valid() {
		return fmt.Errorf("%w: hotel '%s'", ErrInvalidField, candidate.Hotel)
	}

	provider := findProvider(providers, candidate.ProviderID)
	if provider == nil {
		return fmt.Errorf("%w: provider '%s'", ErrInvalidReference, candidate.ProviderID)
	}

	if !IsAvailable(provider, day) {
		return fmt.Errorf("%w: %s on %s", ErrProviderUnavailable, provider.Name, day.Weekday())
	}

	other, err := FindConflicting(v.durations, candidate, existing, candidate.ID)
	if err != nil {
		return err
	}
	if other != nil {
		return fmt.Errorf("%w: %s at %s", ErrTimeConflict, provider.Name, other.Time)
	}

	return nil
}

func checkRequired(b *models.Booking) error {
	fields := []struct {
		name  string
		value string
	}{
		{"client_name", b.ClientName},
		{"unit", b.Unit},
		{"date", b.Date},
		{"time", b.Time},
		{"service_id", b.ServiceID},
		{"provider_id", b.ProviderID},
		{"point_of_sale", string(b.PointOfSale)},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

func findProvider(providers []models.Provider, id string) *models.Provider {
	for i := range providers {
		if providers[i].ID == id {
			return &providers[i]
		}
	}
	return nil
}
