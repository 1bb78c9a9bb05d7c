package mirror

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencontrol/internal/events"
	"zencontrol/internal/models"
	"zencontrol/internal/repository"
)

type fakeRemote struct {
	mu      sync.Mutex
	pull    *Snapshot
	pullErr error
	pushErr error
	block   chan struct{}
	pushed  []Snapshot
}

func (f *fakeRemote) Pull(context.Context) (*Snapshot, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return f.pull, nil
}

func (f *fakeRemote) Push(_ context.Context, snap Snapshot) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, snap)
	return f.pushErr
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func newRepos(t *testing.T) (*repository.BookingRepository, *repository.ProviderRepository) {
	t.Helper()
	store := repository.NewMemoryStore()
	b, err := repository.NewBookingRepository(context.Background(), store)
	require.NoError(t, err)
	p, err := repository.NewProviderRepository(context.Background(), store)
	require.NoError(t, err)
	return b, p
}

func newTestSyncer(remote Remote, b BookingCollection, p ProviderCollection) *Syncer {
	return NewSyncer(remote, b, p, Options{PushInterval: time.Millisecond, Settle: 20 * time.Millisecond}, zerolog.New(io.Discard))
}

func TestSyncer_ReconcileOverwritesLocal(t *testing.T) {
	ctx := context.Background()
	bookings, providers := newRepos(t)
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "local-only", Date: "2024-02-01"})
	_, _ = providers.Upsert(ctx, models.Provider{ID: "p-local"})

	remote := &fakeRemote{pull: &Snapshot{
		Bookings: []models.Booking{{ID: "r1", Date: "2024-02-05"}, {ID: "r2", Date: "2024-02-06"}},
	}}
	s := newTestSyncer(remote, bookings, providers)

	replaced, err := s.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, replaced)

	_, found := bookings.Get("local-only")
	assert.False(t, found)
	assert.Len(t, bookings.List(), 2)
	assert.Empty(t, providers.List(), "providers are replaced wholesale too")
	assert.Equal(t, StatusSuccess, s.State().Status)
}

func TestSyncer_ReconcileKeepsLocalWhenRemoteEmpty(t *testing.T) {
	ctx := context.Background()
	bookings, providers := newRepos(t)
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "local"})

	s := newTestSyncer(&fakeRemote{pull: &Snapshot{}}, bookings, providers)
	replaced, err := s.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Len(t, bookings.List(), 1)
}

func TestSyncer_ReconcileFailure(t *testing.T) {
	bookings, providers := newRepos(t)
	s := newTestSyncer(&fakeRemote{pullErr: ErrRemoteSync}, bookings, providers)

	_, err := s.Reconcile(context.Background())
	assert.ErrorIs(t, err, ErrRemoteSync)
	assert.Equal(t, StatusError, s.State().Status)
	assert.NotEmpty(t, s.State().LastError)
}

type failingProviders struct {
	*repository.ProviderRepository
}

func (failingProviders) ReplaceAll(context.Context, []models.Provider) error {
	return errors.New("disk full")
}

func TestSyncer_ReconcileProviderFailureKeepsLocalBookings(t *testing.T) {
	ctx := context.Background()
	bookings, providers := newRepos(t)
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "local-only", Date: "2024-02-01"})

	remote := &fakeRemote{pull: &Snapshot{
		Bookings:  []models.Booking{{ID: "r1", Date: "2024-02-05"}},
		Providers: []models.Provider{{ID: "p-remote"}},
	}}
	s := newTestSyncer(remote, bookings, failingProviders{providers})

	replaced, err := s.Reconcile(ctx)
	require.Error(t, err)
	assert.False(t, replaced)
	assert.Contains(t, err.Error(), "replace providers")
	assert.Equal(t, StatusError, s.State().Status)

	list := bookings.List()
	require.Len(t, list, 1)
	assert.Equal(t, "local-only", list[0].ID)
}

func TestSyncer_PushAsync(t *testing.T) {
	ctx := context.Background()
	bookings, providers := newRepos(t)
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "a"})

	remote := &fakeRemote{}
	s := newTestSyncer(remote, bookings, providers)

	require.NoError(t, s.HandleEvent(events.Event{Type: events.BookingSaved}))
	s.PushAsync()
	s.Wait()

	assert.Equal(t, 2, remote.pushCount())
	assert.Len(t, remote.pushed[0].Bookings, 1)
	assert.Equal(t, StatusSuccess, s.State().Status)

	assert.Eventually(t, func() bool {
		return s.State().Status == StatusIdle
	}, time.Second, 5*time.Millisecond)
}

func TestSyncer_PushAsyncCoalescesBurst(t *testing.T) {
	ctx := context.Background()
	bookings, providers := newRepos(t)
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "a"})

	remote := &fakeRemote{block: make(chan struct{})}
	s := NewSyncer(remote, bookings, providers, Options{
		PushInterval: 10 * time.Millisecond,
		Settle:       time.Second,
		Timeout:      50 * time.Millisecond,
	}, zerolog.New(io.Discard))

	s.PushAsync()
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "b"})
	for i := 0; i < 14; i++ {
		s.PushAsync()
	}
	close(remote.block)
	s.Wait()

	require.Equal(t, 2, remote.pushCount(), "in-flight push plus one follow-up")
	assert.Len(t, remote.pushed[1].Bookings, 2, "follow-up carries the latest collections")
	assert.Equal(t, StatusSuccess, s.State().Status)
	assert.Empty(t, s.State().LastError)
}

func TestSyncer_PushFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	bookings, providers := newRepos(t)
	_, _ = bookings.Upsert(ctx, models.Booking{ID: "a"})

	remote := &fakeRemote{pushErr: errors.New("offline")}
	s := newTestSyncer(remote, bookings, providers)

	err := s.PushNow(ctx)
	assert.Error(t, err)
	assert.Equal(t, StatusError, s.State().Status)
	assert.Len(t, bookings.List(), 1)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, StatusError, s.State().Status, "errors do not settle back to idle")
}

func TestSyncer_Disabled(t *testing.T) {
	bookings, providers := newRepos(t)
	s := newTestSyncer(nil, bookings, providers)

	assert.False(t, s.Enabled())
	replaced, err := s.Reconcile(context.Background())
	assert.NoError(t, err)
	assert.False(t, replaced)
	assert.NoError(t, s.PushNow(context.Background()))
	s.PushAsync()
	s.Wait()
	assert.Equal(t, StatusIdle, s.State().Status)
}
