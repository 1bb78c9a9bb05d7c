package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zencontrol/internal/access"
	"zencontrol/internal/events"
	"zencontrol/internal/models"
	"zencontrol/internal/scheduling"
)

// ProviderService manages the masseur roster.
type ProviderService struct {
	providers ProviderStore
	bookings  BookingStore
	publisher Publisher
	logger    zerolog.Logger
	mu        sync.Mutex
}

func NewProviderService(providers ProviderStore, bookings BookingStore, publisher Publisher, logger zerolog.Logger) *ProviderService {
	return &ProviderService{
		providers: providers,
		bookings:  bookings,
		publisher: publisher,
		logger:    logger.With().Str("component", "provider_service").Logger(),
	}
}

func (s *ProviderService) List() []models.Provider {
	return s.providers.List()
}

// Save creates or updates a provider. Admins manage every field; a masseur
// may change only the shift and days off of their own record.
func (s *ProviderService) Save(ctx context.Context, session models.Session, in models.Provider) (*models.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := in
	switch {
	case session.IsAdmin():
	case session.IsMasseur():
		if in.ID == "" || in.ID != session.ProviderID {
			return nil, access.ErrForbidden
		}
		stored, ok := s.providers.Get(in.ID)
		if !ok {
			return nil, fmt.Errorf("%w: provider '%s'", ErrNotFound, in.ID)
		}
		p = stored
		p.ShiftStart = in.ShiftStart
		p.ShiftEnd = in.ShiftEnd
		p.ExcludedWeekdays = in.ExcludedWeekdays
	default:
		return nil, access.ErrForbidden
	}

	p.Name = strings.TrimSpace(p.Name)
	p.ShiftStart = models.NormalizeClock(strings.TrimSpace(p.ShiftStart))
	p.ShiftEnd = models.NormalizeClock(strings.TrimSpace(p.ShiftEnd))
	if err := checkProvider(&p); err != nil {
		return nil, err
	}
	p.ExcludedWeekdays = models.NormalizeWeekdays(p.ExcludedWeekdays)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if _, err := s.providers.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save provider: %w", err)
	}

	s.publisher.PublishJSON(events.ProviderSaved, p)
	s.logger.Info().Str("provider_id", p.ID).Str("by", session.Name).Msg("provider saved")
	return &p, nil
}

// Delete removes a provider and returns how many bookings still reference it.
func (s *ProviderService) Delete(ctx context.Context, session models.Session, id string) (int, error) {
	if !session.IsAdmin() {
		return 0, access.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.providers.Remove(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete provider: %w", err)
	}
	if !removed {
		return 0, nil
	}

	orphaned := len(ownedBy(s.bookings.List(), id))
	s.publisher.PublishJSON(events.ProviderDeleted, map[string]string{"id": id})
	if orphaned > 0 {
		s.logger.Warn().Str("provider_id", id).Int("bookings", orphaned).Msg("provider deleted with bookings still assigned")
	} else {
		s.logger.Info().Str("provider_id", id).Msg("provider deleted")
	}
	return orphaned, nil
}

func checkProvider(p *models.Provider) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name", scheduling.ErrMissingField)
	}
	start, err := models.MinutesOfDay(p.ShiftStart)
	if err != nil {
		return fmt.Errorf("%w: start_time: %v", scheduling.ErrInvalidField, err)
	}
	end, err := models.MinutesOfDay(p.ShiftEnd)
	if err != nil {
		return fmt.Errorf("%w: end_time: %v", scheduling.ErrInvalidField, err)
	}
	if start >= end {
		return fmt.Errorf("%w: shift %s-%s", scheduling.ErrInvalidField, p.ShiftStart, p.ShiftEnd)
	}
	return nil
}
