package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MarkerRepository stores the year-month of the last finalized archival decision.
type MarkerRepository struct {
	store Store
}

func NewMarkerRepository(store Store) *MarkerRepository {
	return &MarkerRepository{store: store}
}

// Get returns the stored "YYYY-MM" value and whether one exists.
func (r *MarkerRepository) Get(ctx context.Context) (string, bool, error) {
	data, found, err := r.store.Get(ctx, KeyMarker)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", KeyMarker, err)
	}
	month := strings.TrimSpace(string(data))
	if !found || month == "" {
		return "", false, nil
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return "", false, fmt.Errorf("%w: %s: %q", ErrCorruptState, KeyMarker, month)
	}
	return month, true, nil
}

func (r *MarkerRepository) Set(ctx context.Context, month string) error {
	if err := r.store.Put(ctx, KeyMarker, []byte(month)); err != nil {
		return fmt.Errorf("write %s: %w", KeyMarker, err)
	}
	return nil
}
