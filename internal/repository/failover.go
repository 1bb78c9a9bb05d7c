package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStore reads and writes through primary while it is healthy and keeps
// fallback as a full local copy. Keys written while primary was down are copied
// back from fallback once primary answers again.
type FailoverStore struct {
	primary  Store
	fallback Store
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	dirty     map[string]struct{}
}

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		dirty:    make(map[string]struct{}),
	}
}

func (s *FailoverStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.usePrimary(ctx) {
		val, found, err := s.primary.Get(ctx, key)
		if err == nil {
			return val, found, nil
		}
		s.markDown(err)
	}
	return s.fallback.Get(ctx, key)
}

func (s *FailoverStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.fallback.Put(ctx, key, value); err != nil {
		return err
	}

	if s.usePrimary(ctx) {
		err := s.primary.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		s.markDown(err)
	}

	s.mu.Lock()
	s.dirty[key] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Healthy reports whether the primary is currently in use.
func (s *FailoverStore) Healthy() bool {
	return !s.isDown.Load()
}

func (s *FailoverStore) markDown(err error) {
	s.mu.Lock()
	s.lastCheck = time.Now()
	s.mu.Unlock()
	if !s.isDown.Swap(true) {
		s.logger.Warn().Err(err).Msg("Primary store failed, switching to fallback")
	}
}

// usePrimary decides whether to try primary, attempting recovery when the
// recovery interval has elapsed.
func (s *FailoverStore) usePrimary(ctx context.Context) bool {
	if !s.isDown.Load() {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.lastCheck) < recoveryInterval {
		return false
	}
	s.lastCheck = time.Now()

	for key := range s.dirty {
		val, found, err := s.fallback.Get(ctx, key)
		if err != nil {
			return false
		}
		if found {
			if err := s.primary.Put(ctx, key, val); err != nil {
				s.logger.Debug().Err(err).Msg("Primary store still unavailable")
				return false
			}
		}
		delete(s.dirty, key)
	}

	s.isDown.Store(false)
	s.logger.Info().Msg("Primary store recovered")
	return true
}
