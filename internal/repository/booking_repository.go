package repository

import (
	"context"
	"time"

	"zencontrol/internal/models"
)

// BookingRepository is the booking collection. It does not validate;
// callers run the scheduling checks before Upsert.
type BookingRepository struct {
	c *collection[models.Booking]
}

// NewBookingRepository loads the stored collection. A decode failure returns ErrCorruptState.
func NewBookingRepository(ctx context.Context, store Store) (*BookingRepository, error) {
	c := newCollection(store, KeyBookings, func(b *models.Booking) string { return b.ID })
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return &BookingRepository{c: c}, nil
}

// List returns every booking in insertion order.
func (r *BookingRepository) List() []models.Booking {
	return r.c.list()
}

func (r *BookingRepository) Get(id string) (models.Booking, bool) {
	return r.c.get(id)
}

// Upsert replaces the booking with the same ID in place, or appends it.
func (r *BookingRepository) Upsert(ctx context.Context, b models.Booking) (bool, error) {
	return r.c.upsert(ctx, b)
}

// Remove deletes a booking; removing an unknown ID is a no-op.
func (r *BookingRepository) Remove(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, id)
}

// BulkRemoveBefore deletes bookings dated strictly before cutoff's calendar date
// and returns them. Bookings with an unparseable date are kept.
func (r *BookingRepository) BulkRemoveBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	cut := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	return r.c.partition(ctx, func(b *models.Booking) bool {
		day, err := b.Day()
		if err != nil {
			return true
		}
		return !day.Before(cut)
	})
}

// ReplaceAll overwrites the whole collection.
func (r *BookingRepository) ReplaceAll(ctx context.Context, bookings []models.Booking) error {
	return r.c.replaceAll(ctx, bookings)
}
