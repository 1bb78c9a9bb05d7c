// Package scheduling decides whether a booking can be placed.
package scheduling

import (
	"time"

	"zencontrol/internal/models"
)

// IsAvailable reports whether the provider works on date's weekday.
// The provider must already be resolved by the caller.
func IsAvailable(provider *models.Provider, date time.Time) bool {
	return !provider.Excludes(date.Weekday())
}
