package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"zencontrol/internal/events"
	"zencontrol/internal/metrics"
	"zencontrol/internal/models"
)

// Status is the user-visible sync indicator.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a point-in-time view of the sync indicator.
type State struct {
	Status      Status    `json:"status"`
	LastError   string    `json:"last_error,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// BookingCollection is the local booking store the syncer reads and overwrites.
type BookingCollection interface {
	List() []models.Booking
	ReplaceAll(ctx context.Context, bookings []models.Booking) error
}

// ProviderCollection is the local provider store the syncer reads and overwrites.
type ProviderCollection interface {
	List() []models.Provider
	ReplaceAll(ctx context.Context, providers []models.Provider) error
}

// Syncer mirrors the local collections to a Remote. A nil remote disables mirroring.
type Syncer struct {
	remote    Remote
	bookings  BookingCollection
	providers ProviderCollection
	limiter   *rate.Limiter
	settle    time.Duration
	timeout   time.Duration
	logger    zerolog.Logger

	mu          sync.Mutex
	state       State
	settleTimer *time.Timer

	// pushMu guards the single push worker. pending records mutations that
	// arrived while a push was in flight; they are sent as one follow-up push.
	pushMu  sync.Mutex
	running bool
	pending bool
	wg      sync.WaitGroup
}

// Options tune push pacing and status display.
type Options struct {
	PushInterval time.Duration
	Settle       time.Duration
	Timeout      time.Duration
}

func NewSyncer(remote Remote, bookings BookingCollection, providers ProviderCollection, opts Options, logger zerolog.Logger) *Syncer {
	if opts.PushInterval <= 0 {
		opts.PushInterval = time.Second
	}
	if opts.Settle <= 0 {
		opts.Settle = 3 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Syncer{
		remote:    remote,
		bookings:  bookings,
		providers: providers,
		limiter:   rate.NewLimiter(rate.Every(opts.PushInterval), 1),
		settle:    opts.Settle,
		timeout:   opts.Timeout,
		logger:    logger.With().Str("component", "mirror").Logger(),
		state:     State{Status: StatusIdle},
	}
}

// Enabled reports whether a remote is configured.
func (s *Syncer) Enabled() bool {
	return s.remote != nil
}

// State returns the current sync indicator.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reconcile pulls the remote copy. When it holds at least one booking or
// provider, both local collections are overwritten with it. It reports whether
// the local data was replaced.
func (s *Syncer) Reconcile(ctx context.Context) (bool, error) {
	if s.remote == nil {
		return false, nil
	}

	s.setStatus(StatusSyncing, nil)
	snap, err := s.remote.Pull(ctx)
	if err != nil {
		metrics.IncMirrorSync("pull", "error")
		s.setStatus(StatusError, err)
		s.logger.Error().Err(err).Msg("Failed to load data from remote")
		return false, err
	}
	metrics.IncMirrorSync("pull", "ok")

	if snap.Empty() {
		s.logger.Info().Msg("Remote is empty, keeping local data")
		s.setStatus(StatusSuccess, nil)
		return false, nil
	}

	// Providers go first: a failure there leaves both collections local. A
	// failure replacing bookings leaves remote providers with local bookings.
	if err := s.providers.ReplaceAll(ctx, snap.Providers); err != nil {
		s.setStatus(StatusError, err)
		return false, fmt.Errorf("replace providers: %w", err)
	}
	if err := s.bookings.ReplaceAll(ctx, snap.Bookings); err != nil {
		s.setStatus(StatusError, err)
		return false, fmt.Errorf("replace bookings: %w", err)
	}

	s.logger.Info().
		Int("bookings", len(snap.Bookings)).
		Int("providers", len(snap.Providers)).
		Msg("Local data replaced from remote")
	s.setStatus(StatusSuccess, nil)
	return true, nil
}

// PushNow sends the current collections and waits for the outcome.
func (s *Syncer) PushNow(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}

	snap := Snapshot{Bookings: s.bookings.List(), Providers: s.providers.List()}

	s.setStatus(StatusSyncing, nil)
	if err := s.remote.Push(ctx, snap); err != nil {
		metrics.IncMirrorSync("push", "error")
		s.setStatus(StatusError, err)
		s.logger.Warn().Err(err).Msg("Remote push failed")
		return err
	}

	metrics.IncMirrorSync("push", "ok")
	s.logger.Debug().
		Int("bookings", len(snap.Bookings)).
		Int("providers", len(snap.Providers)).
		Msg("Remote push completed")
	s.setStatus(StatusSuccess, nil)
	return nil
}

// PushAsync schedules a push without waiting for it. Calls made while a push
// is in flight collapse into one follow-up push of the latest collections.
// Failures only update the status.
func (s *Syncer) PushAsync() {
	if s.remote == nil {
		return
	}

	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if s.running {
		s.pending = true
		return
	}
	s.running = true
	s.wg.Add(1)
	go s.pushLoop()
}

func (s *Syncer) pushLoop() {
	defer s.wg.Done()
	for {
		if err := s.limiter.Wait(context.Background()); err != nil {
			s.setStatus(StatusError, err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			_ = s.PushNow(ctx)
			cancel()
		}

		s.pushMu.Lock()
		if !s.pending {
			s.running = false
			s.pushMu.Unlock()
			return
		}
		s.pending = false
		s.pushMu.Unlock()
	}
}

// HandleEvent pushes after any committed mutation.
func (s *Syncer) HandleEvent(events.Event) error {
	s.PushAsync()
	return nil
}

// Wait blocks until scheduled pushes have finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

func (s *Syncer) setStatus(status Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}

	s.state.Status = status
	switch status {
	case StatusError:
		if err != nil {
			s.state.LastError = err.Error()
		}
	case StatusSuccess:
		s.state.LastError = ""
		s.state.LastSuccess = time.Now()
		s.settleTimer = time.AfterFunc(s.settle, s.settleIdle)
	}
}

func (s *Syncer) settleIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == StatusSuccess {
		s.state.Status = StatusIdle
	}
}
