// Package mirror keeps a remote spreadsheet copy of the local collections.
package mirror

import (
	"context"
	"errors"

	"zencontrol/internal/models"
)

// ErrRemoteSync wraps every failure talking to the remote mirror.
var ErrRemoteSync = errors.New("remote sync failed")

// Snapshot is the full content of both mirrored collections.
type Snapshot struct {
	Bookings  []models.Booking
	Providers []models.Provider
}

// Empty reports whether the snapshot carries no records at all.
func (s *Snapshot) Empty() bool {
	return len(s.Bookings) == 0 && len(s.Providers) == 0
}

// Remote is the spreadsheet-backed store.
type Remote interface {
	Pull(ctx context.Context) (*Snapshot, error)
	Push(ctx context.Context, snap Snapshot) error
}
