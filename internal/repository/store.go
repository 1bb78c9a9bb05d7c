// Package repository owns the booking, provider and archival-marker records.
package repository

import (
	"context"
	"errors"
	"sync"
)

// Keys of the three persisted records.
const (
	KeyBookings  = "zen_appointments"
	KeyProviders = "zen_masseurs"
	KeyMarker    = "zen_last_access_month"
)

// ErrCorruptState is returned when a stored record cannot be decoded.
var ErrCorruptState = errors.New("corrupt persisted state")

// Store persists opaque blobs by key. Each value is written whole.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}
