// Package service holds the role-aware operations on bookings and providers.
package service

import (
	"context"
	"errors"
	"sort"

	"zencontrol/internal/models"
)

var ErrNotFound = errors.New("not found")

// BookingStore is the booking collection used by the services.
type BookingStore interface {
	List() []models.Booking
	Get(id string) (models.Booking, bool)
	Upsert(ctx context.Context, b models.Booking) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// ProviderStore is the provider collection used by the services.
type ProviderStore interface {
	List() []models.Provider
	Get(id string) (models.Provider, bool)
	Upsert(ctx context.Context, p models.Provider) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// Publisher receives mutation events.
type Publisher interface {
	PublishJSON(eventType string, payload any)
}

func sortByStart(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		return bookings[i].Time < bookings[j].Time
	})
}

func ownedBy(bookings []models.Booking, providerID string) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ProviderID == providerID {
			out = append(out, b)
		}
	}
	return out
}
