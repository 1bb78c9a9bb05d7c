package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zencontrol/internal/access"
	"zencontrol/internal/catalog"
	"zencontrol/internal/events"
	"zencontrol/internal/metrics"
	"zencontrol/internal/models"
	"zencontrol/internal/scheduling"
)

// BookingService validates and commits bookings on behalf of a session.
type BookingService struct {
	bookings  BookingStore
	providers ProviderStore
	catalog   *catalog.Catalog
	validator *scheduling.Validator
	publisher Publisher
	logger    zerolog.Logger

	// mu makes validate-then-commit atomic across concurrent requests.
	mu  sync.Mutex
	now func() time.Time
}

func NewBookingService(
	bookings BookingStore,
	providers ProviderStore,
	cat *catalog.Catalog,
	publisher Publisher,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		providers: providers,
		catalog:   cat,
		validator: scheduling.NewValidator(cat),
		publisher: publisher,
		logger:    logger.With().Str("component", "booking_service").Logger(),
		now:       time.Now,
	}
}

// Save creates a booking, or edits the stored one when in.ID is known.
// Edits keep the stored ID, creation time, creator and status unless in.Status is set.
func (s *BookingService) Save(ctx context.Context, session models.Session, in models.Booking) (*models.Booking, error) {
	if !session.CanManageBookings() {
		return nil, access.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := in
	b.ClientName = strings.TrimSpace(b.ClientName)
	b.Unit = strings.TrimSpace(b.Unit)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Time = models.NormalizeClock(strings.TrimSpace(b.Time))
	if b.Hotel == "" {
		b.Hotel = models.HotelVilageInn
	}

	kind := "created"
	if stored, ok := s.bookingByID(b.ID); ok {
		kind = "updated"
		b.CreatedAt = stored.CreatedAt
		b.CreatedBy = stored.CreatedBy
		if b.Status == "" {
			b.Status = stored.Status
		}
	} else {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.CreatedAt = s.now()
		b.CreatedBy = session.Name
	}
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	if !b.Status.Valid() {
		return nil, fmt.Errorf("%w: status '%s'", scheduling.ErrInvalidField, b.Status)
	}

	if err := s.validator.Validate(&b, s.providers.List(), s.bookings.List()); err != nil {
		metrics.IncBookingRejected(rejectionReason(err))
		s.logger.Debug().Err(err).Str("provider_id", b.ProviderID).Str("date", b.Date).Str("time", b.Time).Msg("booking rejected")
		return nil, err
	}

	if _, err := s.bookings.Upsert(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	metrics.IncBookingSaved(kind)
	s.publisher.PublishJSON(events.BookingSaved, b)
	s.logger.Info().Str("booking_id", b.ID).Str("kind", kind).Str("by", session.Name).Msg("booking saved")

	return &b, nil
}

// Delete removes a booking. Deleting an unknown ID is a no-op.
func (s *BookingService) Delete(ctx context.Context, session models.Session, id string) error {
	if !session.CanManageBookings() {
		return access.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.bookings.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if !removed {
		return nil
	}

	metrics.IncBookingDeleted()
	s.publisher.PublishJSON(events.BookingDeleted, map[string]string{"id": id})
	s.logger.Info().Str("booking_id", id).Str("by", session.Name).Msg("booking deleted")
	return nil
}

// ToggleStatus flips pending and done without running the validation pipeline.
// Masseurs may toggle only their own bookings.
func (s *BookingService) ToggleStatus(ctx context.Context, session models.Session, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: booking '%s'", ErrNotFound, id)
	}
	if !session.CanManageBookings() && !session.Owns(&b) {
		return nil, access.ErrForbidden
	}

	b.Status = b.Status.Toggle()
	if _, err := s.bookings.Upsert(ctx, b); err != nil {
		return nil, fmt.Errorf("toggle status: %w", err)
	}

	s.publisher.PublishJSON(events.BookingStatus, b)
	s.logger.Info().Str("booking_id", id).Str("status", string(b.Status)).Msg("booking status changed")
	return &b, nil
}

// List returns the bookings visible to the session.
func (s *BookingService) List(session models.Session) []models.Booking {
	all := s.bookings.List()
	if session.IsMasseur() {
		return ownedBy(all, session.ProviderID)
	}
	return all
}

// FreeSlots suggests start times for serviceID on date within the provider's shift.
func (s *BookingService) FreeSlots(providerID, date, serviceID string, step int) ([]scheduling.SlotInfo, error) {
	p, ok := s.providers.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("%w: provider '%s'", ErrNotFound, providerID)
	}
	return scheduling.FreeSlots(s.catalog, &p, date, serviceID, s.bookings.List(), step)
}

func (s *BookingService) bookingByID(id string) (models.Booking, bool) {
	if id == "" {
		return models.Booking{}, false
	}
	return s.bookings.Get(id)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, scheduling.ErrMissingField):
		return "missing_field"
	case errors.Is(err, scheduling.ErrInvalidField):
		return "invalid_field"
	case errors.Is(err, scheduling.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, scheduling.ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, scheduling.ErrTimeConflict):
		return "conflict"
	default:
		return "other"
	}
}
